package ai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/crs-edu/crs-backend/internal/ai"
)

func TestGoogleProvider_Complete(t *testing.T) {
	var gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [{"content": {"parts": [{"text": "mapped"}]}}],
			"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 3}
		}`))
	}))
	defer srv.Close()

	p := ai.NewGoogleProvider("test-key", ai.WithGoogleBaseURL(srv.URL))

	resp, err := p.Complete(context.Background(), ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: "you are a mapper"},
			{Role: "user", Content: "map these questions"},
		},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "mapped" {
		t.Errorf("Content = %q, want %q", resp.Content, "mapped")
	}
	if resp.InputTokens != 12 || resp.OutputTokens != 3 {
		t.Errorf("tokens = %d/%d, want 12/3", resp.InputTokens, resp.OutputTokens)
	}
	if !strings.Contains(gotPath, "gemini-2.5-flash") {
		t.Errorf("path = %q, want default model in path", gotPath)
	}

	// System role is not a Gemini content role and must be dropped.
	var req struct {
		Contents []struct {
			Role string `json:"role"`
		} `json:"contents"`
	}
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("unmarshal request: %v", err)
	}
	if len(req.Contents) != 1 || req.Contents[0].Role != "user" {
		t.Errorf("contents = %+v, want single user content", req.Contents)
	}
}

func TestGoogleProvider_Complete_InlineDocument(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "1. What is X?"}]}}]}`))
	}))
	defer srv.Close()

	p := ai.NewGoogleProvider("test-key", ai.WithGoogleBaseURL(srv.URL))

	resp, err := p.Complete(context.Background(), ai.CompletionRequest{
		Messages:  []ai.Message{{Role: "user", Content: "transcribe the questions"}},
		Documents: []ai.DocumentPart{{MIME: "application/pdf", Data: []byte("%PDF-1.4 fake")}},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "1. What is X?" {
		t.Errorf("Content = %q", resp.Content)
	}

	var req struct {
		Contents []struct {
			Parts []struct {
				Text       string `json:"text"`
				InlineData *struct {
					MIMEType string `json:"mime_type"`
					Data     string `json:"data"`
				} `json:"inline_data"`
			} `json:"parts"`
		} `json:"contents"`
	}
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("unmarshal request: %v", err)
	}
	if len(req.Contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(req.Contents))
	}
	parts := req.Contents[0].Parts
	if len(parts) != 2 {
		t.Fatalf("parts = %d, want text + inline_data", len(parts))
	}
	if parts[1].InlineData == nil || parts[1].InlineData.MIMEType != "application/pdf" {
		t.Errorf("inline_data = %+v, want application/pdf", parts[1].InlineData)
	}
	if parts[1].InlineData.Data == "" {
		t.Error("inline_data.data is empty, want base64 payload")
	}
}

func TestGoogleProvider_Complete_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "quota exceeded"}}`))
	}))
	defer srv.Close()

	p := ai.NewGoogleProvider("test-key", ai.WithGoogleBaseURL(srv.URL))

	_, err := p.Complete(context.Background(), ai.CompletionRequest{
		Messages: []ai.Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("Complete() should surface API errors")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error = %v, want status code in message", err)
	}
}

func TestGoogleProvider_Complete_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	p := ai.NewGoogleProvider("test-key", ai.WithGoogleBaseURL(srv.URL))

	_, err := p.Complete(context.Background(), ai.CompletionRequest{
		Messages: []ai.Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Error("Complete() should fail on empty candidates")
	}
}

func TestGoogleProvider_HealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models": []}`))
	}))
	defer srv.Close()

	p := ai.NewGoogleProvider("test-key", ai.WithGoogleBaseURL(srv.URL))
	if err := p.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}
