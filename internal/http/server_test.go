package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"scexport/internal/core"
)

type staticCollection []core.Track

func (c staticCollection) List() []core.Track { return c }

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	req, _ := http.NewRequestWithContext(context.Background(), "GET", url, http.NoBody)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to call %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestNewServer(t *testing.T) {
	config := &core.ServerConfig{Host: "127.0.0.1", Port: 0}

	// Each server owns its registry, so two servers in one process do not conflict.
	first := NewServer(config, nil, zap.NewNop())
	second := NewServer(config, nil, zap.NewNop())
	if first.GetMetrics() == nil || second.GetMetrics() == nil {
		t.Fatal("NewServer() should create metrics")
	}
}

func TestCreateHTTPServer(t *testing.T) {
	config := &core.ServerConfig{
		Host:         "0.0.0.0",
		Port:         9090,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	mux := http.NewServeMux()
	server := createHTTPServer(config, mux)

	if server.Addr != "0.0.0.0:9090" {
		t.Errorf("createHTTPServer() Addr = %q, expected %q", server.Addr, "0.0.0.0:9090")
	}
	if server.Handler != mux {
		t.Errorf("createHTTPServer() Handler mismatch")
	}
	if server.ReadTimeout != config.ReadTimeout {
		t.Errorf("createHTTPServer() ReadTimeout = %v, expected %v", server.ReadTimeout, config.ReadTimeout)
	}
	if server.WriteTimeout != config.WriteTimeout {
		t.Errorf("createHTTPServer() WriteTimeout = %v, expected %v", server.WriteTimeout, config.WriteTimeout)
	}
}

func TestSetupRoutes(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	metrics.RecordNavigation()

	server := httptest.NewServer(setupRoutes(zap.NewNop(), registry, nil))
	defer server.Close()

	tests := []struct {
		path        string
		contentType string
		contains    string
	}{
		{"/healthz", "application/json", `{"status":"ok","service":"scexport"}`},
		{"/readyz", "application/json", `{"status":"ready","service":"scexport"}`},
		{"/metrics", "", "scexport_navigations_total 1"},
		{"/collection", "application/json", "[]"},
		{"/", "text/html", "<title>scexport</title>"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, server.URL+tt.path)
			if resp.StatusCode != http.StatusOK {
				t.Errorf("%s returned status %d, expected %d", tt.path, resp.StatusCode, http.StatusOK)
			}
			if tt.contentType != "" && resp.Header.Get("Content-Type") != tt.contentType {
				t.Errorf("%s Content-Type = %q, expected %q", tt.path, resp.Header.Get("Content-Type"), tt.contentType)
			}
			if !strings.Contains(body, tt.contains) {
				t.Errorf("%s body missing %q: %s", tt.path, tt.contains, body)
			}
		})
	}
}

func TestCollectionEndpoint(t *testing.T) {
	collection := staticCollection{
		{Username: "a", TrackTitle: "One", URL: "https://soundcloud.com/a/one"},
		{Username: "b", TrackTitle: "Two", URL: "https://soundcloud.com/b/two"},
	}
	handler := collectionHandler(zap.NewNop(), collection)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/collection", http.NoBody))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var got []core.Track
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("body is not a track array: %v", err)
	}
	if len(got) != 2 || got[1].URL != "https://soundcloud.com/b/two" {
		t.Errorf("collection = %+v", got)
	}
}

func TestMetricsRecorders(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	metrics.MountSucceeded("soundcloud-get-info-song-button")
	metrics.MountSucceeded("soundcloud-get-info-song-button")
	metrics.MountFailed("soundcloud-get-info-row-")
	metrics.RecordExtraction("playlist", "success")
	metrics.RecordExport("json", "cancelled")
	metrics.SetCollectionSize(7)

	server := httptest.NewServer(setupRoutes(zap.NewNop(), registry, nil))
	defer server.Close()
	_, body := get(t, server.URL+"/metrics")

	expected := []string{
		`scexport_mounts_total{mount="soundcloud-get-info-song-button"} 2`,
		`scexport_mount_failures_total{mount="soundcloud-get-info-row-"} 1`,
		`scexport_extractions_total{kind="playlist",status="success"} 1`,
		`scexport_exports_total{format="json",status="cancelled"} 1`,
		`scexport_collection_size 7`,
	}
	for _, line := range expected {
		if !strings.Contains(body, line) {
			t.Errorf("metrics output missing %q", line)
		}
	}
}

func TestServer_StartContextCancellation(t *testing.T) {
	config := &core.ServerConfig{Host: "127.0.0.1", Port: 0}
	server := NewServer(config, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() = %v, want nil after cancellation", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after cancellation")
	}
}
