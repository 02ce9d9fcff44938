//nolint:testpackage // Testing internal client requires same package access
package labeler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSidecar_Label(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/label" {
			t.Errorf("expected /label, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}

		var req LabelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Text != "the app crashes on startup" {
			t.Errorf("unexpected review text %q", req.Text)
		}

		response := LabelResponse{
			Category: "bug",
			Reason:   "reviewer describes a startup crash",
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			t.Errorf("failed to encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewSidecar(server.URL, time.Second)
	label, err := client.Label(context.Background(), "Crash", "the app crashes on startup")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label == nil {
		t.Fatal("expected a label")
	}
	if label.Category != "bug" {
		t.Errorf("expected bug, got %s", label.Category)
	}
	if label.Reason == "" {
		t.Error("expected a reason")
	}
}

func TestSidecar_Label_EmptyCategory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(LabelResponse{}); err != nil {
			t.Errorf("failed to encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewSidecar(server.URL, time.Second)
	label, err := client.Label(context.Background(), "", "some review")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != nil {
		t.Errorf("expected nil label when sidecar declines, got %+v", label)
	}
}

func TestSidecar_Label_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewSidecar(server.URL, time.Second)
	_, err := client.Label(context.Background(), "title", "text")

	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestSidecar_Label_Unreachable(t *testing.T) {
	client := NewSidecar("http://127.0.0.1:1", 100*time.Millisecond)
	_, err := client.Label(context.Background(), "title", "text")

	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestSidecar_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("expected /health, got %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewSidecar(server.URL, time.Second)
	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseLabel(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantCategory string
		wantNil      bool
		wantErr      bool
	}{
		{
			name:         "plain json",
			raw:          `{"category": "bug", "reason": "crash"}`,
			wantCategory: "bug",
		},
		{
			name:         "fenced json",
			raw:          "```json\n{\"category\": \"feedback\", \"reason\": \"praise\"}\n```",
			wantCategory: "feedback",
		},
		{
			name:    "empty category",
			raw:     `{"category": "", "reason": ""}`,
			wantNil: true,
		},
		{
			name:    "not json",
			raw:     "I could not decide.",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			label, err := parseLabel(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantNil {
				if label != nil {
					t.Fatalf("expected nil label, got %+v", label)
				}
				return
			}
			if label == nil || label.Category != tc.wantCategory {
				t.Errorf("got %+v, want category %q", label, tc.wantCategory)
			}
		})
	}
}
