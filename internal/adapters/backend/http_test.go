package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fourpillars-ai/pillars/internal/core"
)

func TestAnalyze_DecodesPayload(t *testing.T) {
	var gotReq core.AnalyzeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"confidence_score": 0.9}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	raw, err := c.Analyze(context.Background(), core.AnalyzeRequest{Scenario: "s", Depth: core.DepthQuick})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if raw["confidence_score"] != 0.9 {
		t.Errorf("raw = %v", raw)
	}
	if gotReq.Scenario != "s" || gotReq.Depth != core.DepthQuick {
		t.Errorf("request body = %+v", gotReq)
	}
}

func TestAnalyze_NonSuccessStatusIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.Analyze(context.Background(), core.AnalyzeRequest{Scenario: "s"})
	if !core.IsTransport(err) {
		t.Errorf("error category = %v, want network", core.CategoryOf(err))
	}
}

func TestAnalyze_UnreachableIsNetworkError(t *testing.T) {
	c := New("http://127.0.0.1:1", nil)
	_, err := c.Analyze(context.Background(), core.AnalyzeRequest{Scenario: "s"})
	if !core.IsTransport(err) {
		t.Errorf("error category = %v, want network", core.CategoryOf(err))
	}
}

func TestAnalyze_NonObjectBodyIsNilPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`"just a string"`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	raw, err := c.Analyze(context.Background(), core.AnalyzeRequest{Scenario: "s"})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if raw != nil {
		t.Errorf("raw = %v, want nil", raw)
	}
}

func TestAnalyze_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(srv.URL, nil)
	_, err := c.Analyze(ctx, core.AnalyzeRequest{Scenario: "s"})
	if err == nil {
		t.Fatal("Analyze() error = nil, want cancellation error")
	}
	if !core.IsTransport(err) {
		t.Errorf("error category = %v, want network", core.CategoryOf(err))
	}
}

func TestHealth(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/health" {
				t.Errorf("path = %s", r.URL.Path)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		if err := New(srv.URL, nil).Health(context.Background()); err != nil {
			t.Errorf("Health() error = %v", err)
		}
	})

	t.Run("unhealthy status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		if err := New(srv.URL, nil).Health(context.Background()); !core.IsTransport(err) {
			t.Errorf("Health() error = %v, want network error", err)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		if err := New("http://127.0.0.1:1", nil).Health(context.Background()); !core.IsTransport(err) {
			t.Errorf("Health() error = %v, want network error", err)
		}
	})
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %s, want /health", r.URL.Path)
		}
	}))
	defer srv.Close()

	if err := New(srv.URL+"/", nil).Health(context.Background()); err != nil {
		t.Errorf("Health() error = %v", err)
	}
}
