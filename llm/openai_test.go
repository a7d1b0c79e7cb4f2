package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "text-embedding-3-small" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Input) != 1 || req.Input[0] != "hello" {
			t.Errorf("input = %v", req.Input)
		}

		resp := map[string]any{
			"data": []map[string]any{
				{"index": 0, "embedding": []float64{0.1, 0.2, 0.3}},
			},
			"usage": map[string]int{"prompt_tokens": 2, "total_tokens": 2},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewOpenAIClientWithConfig(ClientConfig{APIKey: "test-key", BaseURL: srv.URL})
	resp, err := c.Embed(context.Background(), "text-embedding-3-small", "hello")
	if err != nil {
		t.Fatalf("Embed() = %v", err)
	}
	if len(resp.Embedding) != 3 || resp.Embedding[0] != 0.1 {
		t.Errorf("embedding = %v", resp.Embedding)
	}
}

func TestOpenAIEmbedBatchOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Results deliberately out of order; the index field is authoritative.
		resp := map[string]any{
			"data": []map[string]any{
				{"index": 1, "embedding": []float64{2}},
				{"index": 0, "embedding": []float64{1}},
			},
			"usage": map[string]int{"total_tokens": 4},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewOpenAIClientWithConfig(ClientConfig{APIKey: "k", BaseURL: srv.URL})
	results, err := c.EmbedBatch(context.Background(), "m", []string{"a", "b"})
	if err != nil {
		t.Fatalf("EmbedBatch() = %v", err)
	}
	if results[0].Embedding[0] != 1 || results[1].Embedding[0] != 2 {
		t.Errorf("results not reordered by index: %v", results)
	}
}

func TestOpenAIEmbedAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewOpenAIClientWithConfig(ClientConfig{APIKey: "k", BaseURL: srv.URL})
	if _, err := c.Embed(context.Background(), "m", "hello"); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestOllamaEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float64{{0.5, 0.5}},
		})
	}))
	defer srv.Close()

	// The /v1 suffix is stripped so the native API path resolves.
	c := NewOllamaEmbedClient(srv.URL + "/v1")
	resp, err := c.Embed(context.Background(), "nomic-embed-text", "hello")
	if err != nil {
		t.Fatalf("Embed() = %v", err)
	}
	if len(resp.Embedding) != 2 {
		t.Errorf("embedding = %v", resp.Embedding)
	}
}
