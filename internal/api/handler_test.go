package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/BerylCAtieno/kicks-match/internal/a2a"
	"github.com/BerylCAtieno/kicks-match/internal/analyzer"
	"github.com/BerylCAtieno/kicks-match/internal/models"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeUpstream imitates the generateContent endpoint and counts hits.
type fakeUpstream struct {
	server *httptest.Server
	hits   atomic.Int32
}

func newFakeUpstream(t *testing.T, status int, body string) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(f.server.Close)
	return f
}

// replyWithText wraps text in the generateContent reply structure.
func replyWithText(t *testing.T, text string) string {
	t.Helper()
	reply := map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
		},
	}
	b, err := json.Marshal(reply)
	if err != nil {
		t.Fatalf("Failed to build upstream reply: %v", err)
	}
	return string(b)
}

func newTestRouter(t *testing.T, upstreamURL, apiKey string, maxUpload int64) *gin.Engine {
	t.Helper()
	gen := analyzer.NewRESTGenerator(upstreamURL, analyzer.GenerationSettings{Model: "gemini-test", Temperature: 0.2, MaxOutputTokens: 256}, nil)
	service := analyzer.NewService(gen, func() string { return apiKey }, 0)
	return newRouterWith(t, service, maxUpload)
}

func newRouterWith(t *testing.T, shoeAnalyzer ShoeAnalyzer, maxUpload int64) *gin.Engine {
	t.Helper()
	router, err := NewRouter(Handlers{
		Analyze: NewAnalyzeHandler(shoeAnalyzer, maxUpload),
		A2A:     a2a.NewA2AHandler(shoeAnalyzer, maxUpload*2),
	})
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	return router
}

func newUploadRequest(t *testing.T, field, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart() error = %v", err)
	}
	part.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(router http.Handler, req *http.Request) (*httptest.ResponseRecorder, models.AnalysisResult) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var result models.AnalysisResult
	json.Unmarshal(w.Body.Bytes(), &result)
	return w, result
}

var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46, 0xFF, 0xD9}

const nikeJSON = `{"brand_guess":"Nike","model_guess":"Dunk Low","dominant_colors":[{"name":"white","hex":"#FFFFFF","ratio":0.6},{"name":"green","hex":"#1B5E20","ratio":0.4}],"accent_colors":[{"name":"black","hex":"#000000"}],"materials":["leather"],"style_tags":["skate","retro"],"short_text_summary":"White and green leather skate shoe"}`

func TestHandleAnalyzeMissingImage(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusOK, replyWithText(t, nikeJSON))
	router := newTestRouter(t, upstream.server.URL, "secret", 1<<20)

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"wrong field name", newUploadRequest(t, "photo", "shoe.jpg", "image/jpeg", jpegBytes)},
		{"json body", func() *http.Request {
			req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"image":"x"}`))
			req.Header.Set("Content-Type", "application/json")
			return req
		}()},
		{"empty body", httptest.NewRequest(http.MethodPost, "/api/analyze", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, result := serve(router, tt.req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			if result.OK || result.Error != "No image provided" {
				t.Errorf("result = %+v", result)
			}
		})
	}

	if hits := upstream.hits.Load(); hits != 0 {
		t.Errorf("upstream hit %d times, want 0", hits)
	}
}

func TestHandleAnalyzeMissingCredential(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusOK, replyWithText(t, nikeJSON))
	router := newTestRouter(t, upstream.server.URL, "", 1<<20)

	w, result := serve(router, newUploadRequest(t, ImageField, "shoe.jpg", "image/jpeg", jpegBytes))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if result.OK || !strings.Contains(result.Error, "GEMINI_API_KEY") {
		t.Errorf("result = %+v", result)
	}
	if hits := upstream.hits.Load(); hits != 0 {
		t.Errorf("upstream hit %d times, want 0", hits)
	}
}

func TestHandleAnalyzeUpstreamFailure(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusServiceUnavailable, `{"error":{"message":"The model is overloaded"}}`)
	router := newTestRouter(t, upstream.server.URL, "secret", 1<<20)

	w, result := serve(router, newUploadRequest(t, ImageField, "shoe.jpg", "image/jpeg", jpegBytes))

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
	if result.OK {
		t.Errorf("ok should be false")
	}
	if !strings.Contains(result.Error, "503") || !strings.Contains(result.Error, "The model is overloaded") {
		t.Errorf("error %q should carry upstream status and body", result.Error)
	}
	if hits := upstream.hits.Load(); hits != 1 {
		t.Errorf("upstream hit %d times, want exactly 1", hits)
	}
}

func TestHandleAnalyzeUpstreamUnreachable(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusOK, "")
	url := upstream.server.URL
	upstream.server.Close()

	router := newTestRouter(t, url, "secret", 1<<20)
	w, result := serve(router, newUploadRequest(t, ImageField, "shoe.jpg", "image/jpeg", jpegBytes))

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
	if result.OK || result.Error == "" {
		t.Errorf("result = %+v", result)
	}
}

func TestHandleAnalyzeEmbeddedJSON(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusOK, replyWithText(t, "here you go: "+nikeJSON+" thanks"))
	router := newTestRouter(t, upstream.server.URL, "secret", 1<<20)

	w, result := serve(router, newUploadRequest(t, ImageField, "shoe.jpg", "image/jpeg", jpegBytes))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}
	if !result.OK || result.Shoe == nil {
		t.Fatalf("result = %+v", result)
	}

	var want models.ShoeDescription
	if err := json.Unmarshal([]byte(nikeJSON), &want); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(*result.Shoe, want) {
		t.Errorf("shoe = %+v, want %+v", *result.Shoe, want)
	}
	if result.Size == nil || *result.Size != int64(len(jpegBytes)) {
		t.Errorf("size = %v, want %d", result.Size, len(jpegBytes))
	}
	if result.MIME != "image/jpeg" {
		t.Errorf("mime = %q, want image/jpeg", result.MIME)
	}
}

func TestHandleAnalyzeFallback(t *testing.T) {
	replies := map[string]string{
		"prose only":    replyWithText(t, "I think this is a nice shoe."),
		"no candidates": `{"candidates":[]}`,
		"broken json":   replyWithText(t, `{"brand_guess": "Nike", "materials": [}`),
	}

	for name, reply := range replies {
		t.Run(name, func(t *testing.T) {
			upstream := newFakeUpstream(t, http.StatusOK, reply)
			router := newTestRouter(t, upstream.server.URL, "secret", 1<<20)

			w, result := serve(router, newUploadRequest(t, ImageField, "shoe.png", "image/png", []byte("png")))

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			if !result.OK || result.Shoe == nil {
				t.Fatalf("result = %+v", result)
			}
			if !reflect.DeepEqual(*result.Shoe, models.FallbackShoe()) {
				t.Errorf("shoe = %+v, want fallback", *result.Shoe)
			}
		})
	}
}

func TestHandleAnalyzeEmptyFile(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusOK, replyWithText(t, nikeJSON))
	router := newTestRouter(t, upstream.server.URL, "secret", 1<<20)

	w, result := serve(router, newUploadRequest(t, ImageField, "empty.jpg", "image/jpeg", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if result.Size == nil || *result.Size != 0 {
		t.Errorf("size = %v, want 0", result.Size)
	}
	if hits := upstream.hits.Load(); hits != 1 {
		t.Errorf("upstream hit %d times, want 1", hits)
	}
	if !strings.Contains(w.Body.String(), `"size":0`) {
		t.Errorf("body should report size 0: %s", w.Body.String())
	}
}

func TestHandleAnalyzeDefaultMIMEType(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusOK, replyWithText(t, nikeJSON))
	router := newTestRouter(t, upstream.server.URL, "secret", 1<<20)

	_, result := serve(router, newUploadRequest(t, ImageField, "shoe", "", []byte("opaque bytes")))

	if result.MIME != analyzer.DefaultMIMEType {
		t.Errorf("mime = %q, want %q", result.MIME, analyzer.DefaultMIMEType)
	}
}

func TestHandleAnalyzeTooLarge(t *testing.T) {
	upstream := newFakeUpstream(t, http.StatusOK, replyWithText(t, nikeJSON))
	router := newTestRouter(t, upstream.server.URL, "secret", 1024)

	w, result := serve(router, newUploadRequest(t, ImageField, "big.jpg", "image/jpeg", bytes.Repeat([]byte{0xAB}, 8192)))

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", w.Code)
	}
	if result.OK {
		t.Errorf("ok should be false")
	}
	if hits := upstream.hits.Load(); hits != 0 {
		t.Errorf("upstream hit %d times, want 0", hits)
	}
}

type panickingAnalyzer struct{}

func (panickingAnalyzer) Analyze(ctx context.Context, img analyzer.Image) (*models.ShoeDescription, error) {
	panic("boom")
}

func TestHandleAnalyzeRecoversFromPanic(t *testing.T) {
	router := newRouterWith(t, panickingAnalyzer{}, 1<<20)

	w, result := serve(router, newUploadRequest(t, ImageField, "shoe.jpg", "image/jpeg", jpegBytes))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if result.OK || result.Error != "boom" {
		t.Errorf("result = %+v", result)
	}
}

func TestPagesAndHealth(t *testing.T) {
	router := newRouterWith(t, panickingAnalyzer{}, 1<<20)

	tests := []struct {
		name     string
		path     string
		contains string
	}{
		{"index page", "/", "<title>Kicks Match</title>"},
		{"index has file picker", "/", `accept="image/png,image/jpeg,image/jpg"`},
		{"script asset", "/static/app.js", "/api/analyze"},
		{"stylesheet asset", "/static/style.css", ".swatch"},
		{"health", "/health", "OK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.contains) {
				t.Errorf("body does not contain %q", tt.contains)
			}
		})
	}
}

func TestRequestIDHeader(t *testing.T) {
	router := newRouterWith(t, panickingAnalyzer{}, 1<<20)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Header().Get(RequestIDHeader) == "" {
		t.Errorf("expected generated %s header", RequestIDHeader)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("%s = %q, want abc-123", RequestIDHeader, got)
	}
}
