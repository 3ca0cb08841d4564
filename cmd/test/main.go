package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorPurple = "\033[35m"
	colorCyan   = "\033[36m"
)

type TestClient struct {
	baseURL   string
	imagePath string
	client    *http.Client
}

func NewTestClient(baseURL, imagePath string) *TestClient {
	return &TestClient{
		baseURL:   baseURL,
		imagePath: imagePath,
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the server")
	testType := flag.String("test", "all", "Test type: all, health, index, agent-card, analyze, a2a")
	imagePath := flag.String("image", "", "Path to a shoe photo (required for analyze and a2a)")
	flag.Parse()

	client := NewTestClient(*baseURL, *imagePath)

	printHeader("Kicks Match - Test Suite")
	fmt.Printf("%sBase URL: %s%s\n\n", colorCyan, *baseURL, colorReset)

	switch *testType {
	case "all":
		client.runAllTests()
	case "health":
		exitOnFailure(client.testHealthCheck())
	case "index":
		exitOnFailure(client.testIndexPage())
	case "agent-card":
		exitOnFailure(client.testAgentCard())
	case "analyze":
		exitOnFailure(client.testAnalyze())
	case "a2a":
		exitOnFailure(client.testA2AAnalyze())
	default:
		printError(fmt.Sprintf("Unknown test type: %s", *testType))
		fmt.Println("\nAvailable tests: all, health, index, agent-card, analyze, a2a")
		os.Exit(1)
	}
}

func exitOnFailure(ok bool) {
	if !ok {
		os.Exit(1)
	}
}

type testCase struct {
	name string
	fn   func() bool
}

func (tc *TestClient) runAllTests() {
	tests := []testCase{
		{"Health Check", tc.testHealthCheck},
		{"Upload Page", tc.testIndexPage},
		{"Agent Card", tc.testAgentCard},
		{"Missing Image", tc.testMissingImage},
	}
	if tc.imagePath != "" {
		tests = append(tests,
			testCase{"Analyze", tc.testAnalyze},
			testCase{"A2A Analyze", tc.testA2AAnalyze},
		)
	} else {
		fmt.Printf("%sNo -image given, skipping analyze and a2a tests%s\n\n", colorYellow, colorReset)
	}

	passed := 0
	failed := 0

	for _, test := range tests {
		if test.fn() {
			passed++
		} else {
			failed++
		}
		fmt.Println()
	}

	printHeader("Test Summary")
	fmt.Printf("%sPassed: %d%s\n", colorGreen, passed, colorReset)
	fmt.Printf("%sFailed: %d%s\n", colorRed, failed, colorReset)
	fmt.Printf("Total: %d\n", passed+failed)

	if failed > 0 {
		os.Exit(1)
	}
}

func (tc *TestClient) testHealthCheck() bool {
	printTestHeader("Testing Health Check Endpoint")

	url := fmt.Sprintf("%s/health", tc.baseURL)
	fmt.Printf("GET %s\n", url)

	resp, err := tc.client.Get(url)
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		return false
	}

	if string(body) != "OK" {
		printError(fmt.Sprintf("Expected body 'OK', got '%s'", string(body)))
		return false
	}

	printSuccess("Health check passed")
	return true
}

func (tc *TestClient) testIndexPage() bool {
	printTestHeader("Testing Upload Page")

	url := fmt.Sprintf("%s/", tc.baseURL)
	fmt.Printf("GET %s\n", url)

	resp, err := tc.client.Get(url)
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		return false
	}

	if !strings.Contains(string(body), `id="shoe-image"`) {
		printError("Upload page is missing the file picker")
		return false
	}

	printSuccess("Upload page rendered")
	return true
}

func (tc *TestClient) testAgentCard() bool {
	printTestHeader("Testing Agent Card Endpoint")

	url := fmt.Sprintf("%s/.well-known/agent.json", tc.baseURL)
	fmt.Printf("GET %s\n", url)

	resp, err := tc.client.Get(url)
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		fmt.Printf("Response: %s\n", string(body))
		return false
	}

	// Parse JSON to validate it's valid
	var agentCard map[string]interface{}
	if err := json.Unmarshal(body, &agentCard); err != nil {
		printError(fmt.Sprintf("Invalid JSON response: %v", err))
		return false
	}

	// Check required fields
	requiredFields := []string{"name", "description", "version", "capabilities", "endpoints", "skills"}
	for _, field := range requiredFields {
		if _, ok := agentCard[field]; !ok {
			printError(fmt.Sprintf("Missing required field: %s", field))
			return false
		}
	}

	printSuccess("Agent card is valid")
	printJSON(body)
	return true
}

func (tc *TestClient) testMissingImage() bool {
	printTestHeader("Testing Analyze Without Image")

	url := fmt.Sprintf("%s/api/analyze", tc.baseURL)
	fmt.Printf("POST %s (no image field)\n", url)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("note", "no photo here")
	mw.Close()

	resp, err := tc.client.Post(url, mw.FormDataContentType(), &buf)
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusBadRequest {
		printError(fmt.Sprintf("Expected status 400, got %d", resp.StatusCode))
		fmt.Printf("Response: %s\n", string(body))
		return false
	}

	printSuccess("Missing image rejected with 400")
	printJSON(body)
	return true
}

func (tc *TestClient) testAnalyze() bool {
	printTestHeader("Testing Shoe Analysis")

	data, mimeType, ok := tc.readImage()
	if !ok {
		return false
	}

	url := fmt.Sprintf("%s/api/analyze", tc.baseURL)
	fmt.Printf("POST %s\n", url)
	fmt.Printf("%sImage:%s %s (%d bytes, %s)\n\n", colorCyan, colorReset, tc.imagePath, len(data), mimeType)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filepath.Base(tc.imagePath)))
	header.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(header)
	if err != nil {
		printError(fmt.Sprintf("Failed to build form: %v", err))
		return false
	}
	part.Write(data)
	mw.Close()

	resp, err := tc.client.Post(url, mw.FormDataContentType(), &buf)
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		printError(fmt.Sprintf("Invalid JSON response: %v", err))
		return false
	}

	if resp.StatusCode != http.StatusOK || result["ok"] != true {
		printError(fmt.Sprintf("Analysis failed with status %d: %v", resp.StatusCode, result["error"]))
		return false
	}

	printSuccess("Shoe analysis completed successfully")

	if shoe, ok := result["shoe"].(map[string]interface{}); ok {
		fmt.Printf("\n%sSummary:%s %v\n", colorGreen, colorReset, shoe["short_text_summary"])
	}
	printJSON(body)
	return true
}

func (tc *TestClient) testA2AAnalyze() bool {
	printTestHeader("Testing A2A Shoe Analysis")

	data, mimeType, ok := tc.readImage()
	if !ok {
		return false
	}

	url := fmt.Sprintf("%s/a2a/analyze", tc.baseURL)
	fmt.Printf("POST %s\n", url)

	// Create JSON-RPC request
	request := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      fmt.Sprintf("test-%d", time.Now().Unix()),
		"method":  "message/send",
		"params": map[string]interface{}{
			"message": map[string]interface{}{
				"kind": "message",
				"role": "user",
				"parts": []map[string]interface{}{
					{
						"kind": "text",
						"text": "Describe this shoe",
					},
					{
						"kind": "file",
						"file": map[string]interface{}{
							"name":     filepath.Base(tc.imagePath),
							"mimeType": mimeType,
							"bytes":    base64.StdEncoding.EncodeToString(data),
						},
					},
				},
			},
			"configuration": map[string]interface{}{
				"blocking":            true,
				"acceptedOutputModes": []string{"text", "data"},
			},
		},
	}

	jsonData, _ := json.Marshal(request)

	resp, err := tc.client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		fmt.Printf("Response: %s\n", string(body))
		return false
	}

	// Parse JSON-RPC response
	var response map[string]interface{}
	if err := json.Unmarshal(body, &response); err != nil {
		printError(fmt.Sprintf("Invalid JSON response: %v", err))
		return false
	}

	// Check for errors
	if errObj, ok := response["error"]; ok {
		printError("Request returned an error")
		errJSON, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Println(string(errJSON))
		return false
	}

	result, ok := response["result"].(map[string]interface{})
	if !ok {
		printError("Invalid result format")
		return false
	}

	status, ok := result["status"].(map[string]interface{})
	if !ok {
		printError("Invalid status format")
		return false
	}

	state, _ := status["state"].(string)
	if state != "completed" {
		printError(fmt.Sprintf("Expected state 'completed', got '%s'", state))
		return false
	}

	printSuccess("A2A analysis completed successfully")

	// Display the response message
	if msg, ok := status["message"].(map[string]interface{}); ok {
		if parts, ok := msg["parts"].([]interface{}); ok {
			fmt.Printf("\n%sDescription:%s\n", colorGreen, colorReset)
			fmt.Println(strings.Repeat("=", 80))
			for _, part := range parts {
				if p, ok := part.(map[string]interface{}); ok {
					if text, ok := p["text"].(string); ok {
						fmt.Println(text)
					}
				}
			}
			fmt.Println(strings.Repeat("=", 80))
		}
	}

	if artifacts, ok := result["artifacts"].([]interface{}); ok && len(artifacts) > 0 {
		fmt.Printf("\n%sArtifacts:%s\n", colorPurple, colorReset)
		artifactsJSON, _ := json.MarshalIndent(artifacts, "", "  ")
		fmt.Println(string(artifactsJSON))
	}

	return true
}

func (tc *TestClient) readImage() ([]byte, string, bool) {
	if tc.imagePath == "" {
		printError("Image path is required for this test. Use -image flag")
		return nil, "", false
	}

	data, err := os.ReadFile(tc.imagePath)
	if err != nil {
		printError(fmt.Sprintf("Failed to read image: %v", err))
		return nil, "", false
	}

	mimeType := "image/jpeg"
	if strings.EqualFold(filepath.Ext(tc.imagePath), ".png") {
		mimeType = "image/png"
	}
	return data, mimeType, true
}

func printHeader(text string) {
	fmt.Printf("\n%s%s%s\n", colorBlue, strings.Repeat("=", len(text)+4), colorReset)
	fmt.Printf("%s= %s =%s\n", colorBlue, text, colorReset)
	fmt.Printf("%s%s%s\n\n", colorBlue, strings.Repeat("=", len(text)+4), colorReset)
}

func printTestHeader(text string) {
	fmt.Printf("%s[TEST] %s%s\n", colorCyan, text, colorReset)
	fmt.Println(strings.Repeat("-", 80))
}

func printSuccess(text string) {
	fmt.Printf("%s✓ %s%s\n", colorGreen, text, colorReset)
}

func printError(text string) {
	fmt.Printf("%s✗ %s%s\n", colorRed, text, colorReset)
}

func printJSON(data []byte) {
	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, data, "", "  "); err == nil {
		fmt.Printf("\n%sResponse:%s\n%s\n", colorYellow, colorReset, prettyJSON.String())
	}
}
