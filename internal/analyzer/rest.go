package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
)

// maxErrorBody caps how much of a failed upstream body is kept.
const maxErrorBody = 8 << 10

type restPart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *restInlineData `json:"inline_data,omitempty"`
}

type restInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type restContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []restPart `json:"parts"`
}

type restGenerationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int32   `json:"maxOutputTokens"`
}

type restRequest struct {
	Contents         []restContent        `json:"contents"`
	GenerationConfig restGenerationConfig `json:"generationConfig"`
}

// restResponse mirrors only the fields we read; everything is optional.
type restResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// RESTGenerator calls the generateContent endpoint directly over HTTPS.
type RESTGenerator struct {
	baseURL  string
	settings GenerationSettings
	client   *http.Client
}

func NewRESTGenerator(baseURL string, settings GenerationSettings, client *http.Client) *RESTGenerator {
	if client == nil {
		client = http.DefaultClient
	}
	return &RESTGenerator{
		baseURL:  strings.TrimRight(baseURL, "/"),
		settings: settings,
		client:   client,
	}
}

func (g *RESTGenerator) Generate(ctx context.Context, apiKey string, req GenerateRequest) (string, error) {
	payload := restRequest{
		Contents: []restContent{
			{
				Role: "user",
				Parts: []restPart{
					{Text: req.Prompt},
					{InlineData: &restInlineData{
						MIMEType: req.Image.MIMEType,
						Data:     EncodeBase64(req.Image.Data),
					}},
				},
			},
		},
		GenerationConfig: restGenerationConfig{
			Temperature:     g.settings.Temperature,
			MaxOutputTokens: g.settings.MaxOutputTokens,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode upstream request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, url.PathEscape(g.settings.Model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build upstream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", apiKey)

	log.Printf("STATE: Calling %s (model=%s, payload=%d bytes)", g.baseURL, g.settings.Model, len(body))

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       string(errBody),
			Err:        fmt.Errorf("generateContent returned %s", resp.Status),
		}
	}

	var reply restResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		// The service answered 2xx; an unreadable body is treated like a reply without text.
		log.Printf("WARN: Failed to decode upstream reply: %v", err)
		return "", nil
	}

	return reply.text(), nil
}

// text concatenates every text part of the first candidate.
func (r *restResponse) text() string {
	if len(r.Candidates) == 0 || r.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}
