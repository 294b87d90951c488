package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8081", "test-key", "test-model")
	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.BaseURL != "http://localhost:8081" {
		t.Errorf("NewClient() BaseURL = %v, want http://localhost:8081", client.BaseURL)
	}
	if client.APIKey != "test-key" {
		t.Errorf("NewClient() APIKey = %v, want test-key", client.APIKey)
	}
	if client.Model != "test-model" {
		t.Errorf("NewClient() Model = %v, want test-model", client.Model)
	}
	if client.client == nil {
		t.Error("NewClient() client should not be nil")
	}
	if !client.Configured() {
		t.Error("Configured() should be true with an API key")
	}
	if NewClient("http://localhost", "", "m").Configured() {
		t.Error("Configured() should be false without an API key")
	}
}

func TestClient_Complete(t *testing.T) {
	tests := []struct {
		name       string
		params     ChatParams
		serverResp func(t *testing.T, w http.ResponseWriter, r *http.Request)
		wantStatus int
		wantBody   string
		wantOK     bool
	}{
		{
			name:   "successful completion",
			params: ChatParams{MaxTokens: 100, Temperature: 0.5},
			serverResp: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if r.URL.Path != "/v1/chat/completions" {
					t.Errorf("expected /v1/chat/completions, got %s", r.URL.Path)
				}
				if r.Header.Get("Authorization") != "Bearer test-key" {
					t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
				}

				var req ChatRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Fatalf("decode request: %v", err)
				}
				if req.Model != "test-model" || req.MaxTokens != 100 || req.Temperature != 0.5 {
					t.Errorf("request = %+v", req)
				}
				if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
					t.Errorf("messages = %+v", req.Messages)
				}

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Hi"}}]}`))
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"choices":[{"message":{"role":"assistant","content":"Hi"}}]}`,
			wantOK:     true,
		},
		{
			name:   "model override",
			params: ChatParams{Model: "other-model"},
			serverResp: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				var req ChatRequest
				_ = json.NewDecoder(r.Body).Decode(&req)
				if req.Model != "other-model" {
					t.Errorf("expected model other-model, got %s", req.Model)
				}
				_, _ = w.Write([]byte(`{}`))
			},
			wantStatus: http.StatusOK,
			wantBody:   `{}`,
			wantOK:     true,
		},
		{
			name: "upstream error is relayed, not returned",
			serverResp: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate limited"}`))
			},
			wantStatus: http.StatusTooManyRequests,
			wantBody:   `{"error":"rate limited"}`,
			wantOK:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.serverResp(t, w, r)
			}))
			defer server.Close()

			client := NewClient(server.URL, "test-key", "test-model")
			messages := []Message{
				{Role: "system", Content: "You are a guide"},
				{Role: "user", Content: "Hello"},
			}

			resp, err := client.Complete(context.Background(), messages, tt.params)
			if err != nil {
				t.Fatalf("Complete() unexpected error: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("Complete() status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if string(resp.Body) != tt.wantBody {
				t.Errorf("Complete() body = %s, want %s", resp.Body, tt.wantBody)
			}
			if resp.OK() != tt.wantOK {
				t.Errorf("Complete() OK() = %v, want %v", resp.OK(), tt.wantOK)
			}
		})
	}
}

func TestClient_Complete_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, "test-key", "test-model")
	if _, err := client.Complete(context.Background(), nil, ChatParams{}); err == nil {
		t.Error("Complete() expected error for unreachable upstream")
	}
}
