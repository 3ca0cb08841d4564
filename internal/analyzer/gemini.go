package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// SDKGenerator talks to Gemini through the generative-ai-go client. The key
// is only known per request, so a client is opened and closed per call.
type SDKGenerator struct {
	baseURL  string
	settings GenerationSettings
	client   *http.Client
}

func NewSDKGenerator(baseURL string, settings GenerationSettings, client *http.Client) *SDKGenerator {
	if client == nil {
		client = http.DefaultClient
	}
	return &SDKGenerator{
		baseURL:  strings.TrimRight(baseURL, "/"),
		settings: settings,
		client:   client,
	}
}

func (g *SDKGenerator) Generate(ctx context.Context, apiKey string, req GenerateRequest) (string, error) {
	client, err := genai.NewClient(ctx,
		option.WithAPIKey(apiKey),
		option.WithEndpoint(g.baseURL),
		option.WithHTTPClient(g.httpClient(apiKey)),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.settings.Model)
	model.SetTemperature(g.settings.Temperature)
	model.SetMaxOutputTokens(g.settings.MaxOutputTokens)

	log.Printf("STATE: Calling Gemini SDK (model=%s, image=%d bytes)", g.settings.Model, len(req.Image.Data))

	resp, err := model.GenerateContent(ctx,
		genai.Text(req.Prompt),
		genai.Blob{MIMEType: req.Image.MIMEType, Data: req.Image.Data},
	)
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			log.Printf("WARN: Gemini blocked the request: %v", blocked)
			return "", nil
		}
		return "", sdkUpstreamError(err)
	}

	return responseText(resp), nil
}

func (g *SDKGenerator) httpClient(apiKey string) *http.Client {
	base := g.client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Transport: &apiKeyTransport{apiKey: apiKey, base: base},
		Timeout:   g.client.Timeout,
	}
}

// apiKeyTransport sets the key header and turns every non-2xx reply into a
// terminal *UpstreamError. The SDK only retries *googleapi.Error, so one
// failed reply is exactly one upstream hit.
type apiKeyTransport struct {
	apiKey string
	base   http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("x-goog-api-key", t.apiKey)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Err:        fmt.Errorf("generateContent returned %s", resp.Status),
		}
	}

	return resp, nil
}

// sdkUpstreamError recovers the HTTP status and body from an SDK failure.
func sdkUpstreamError(err error) *UpstreamError {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		body := apiErr.Body
		if body == "" {
			body = apiErr.Message
		}
		return &UpstreamError{StatusCode: apiErr.Code, Body: body, Err: err}
	}
	return &UpstreamError{Err: err}
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}
