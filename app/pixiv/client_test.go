package pixiv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestDownload(t *testing.T) {
	var gotReferer string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("Referer")
		w.Write([]byte("image-bytes"))
	}))
	defer server.Close()

	client := NewClient(server.Client(), "test-agent")
	dir := t.TempDir()

	if err := client.Download(context.Background(), server.URL+"/img/555_p0.png", dir, ""); err != nil {
		t.Fatalf("Download returned error: %v", err)
	}

	if gotReferer != imageReferer {
		t.Errorf("Expected referer %q, got %q", imageReferer, gotReferer)
	}

	data, err := os.ReadFile(filepath.Join(dir, "555_p0.png"))
	if err != nil {
		t.Fatalf("Expected downloaded file: %v", err)
	}
	if string(data) != "image-bytes" {
		t.Errorf("Unexpected file content: %q", data)
	}

	// No temp files may remain.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the final file in dir, found %d entries", len(entries))
	}
}

func TestDownloadExplicitName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("avatar"))
	}))
	defer server.Close()

	client := NewClient(server.Client(), "test-agent")
	dir := t.TempDir()

	if err := client.Download(context.Background(), server.URL+"/profile.jpg", dir, "42.jpg"); err != nil {
		t.Fatalf("Download returned error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "42.jpg")); err != nil {
		t.Errorf("Expected file under explicit name: %v", err)
	}
}

func TestDownloadErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": {"message": "not found"}}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), "test-agent")
	dir := t.TempDir()

	err := client.Download(context.Background(), server.URL+"/gone.png", dir, "")
	if err == nil {
		t.Fatal("Expected error")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("No file may be written on a failed download, found %d entries", len(entries))
	}
}

func TestDecodeAPIError(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"error message", `{"error": {"message": "rate limited"}}`, "rate limited"},
		{"user message", `{"error": {"user_message": "please retry"}}`, "please retry"},
		{"system message", `{"errors": {"system": {"message": "invalid_grant"}}}`, "invalid_grant"},
		{"unrecognized body", `down for maintenance`, "down for maintenance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeAPIError(503, []byte(tt.body))

			apiErr, ok := err.(*APIError)
			if !ok {
				t.Fatalf("Expected *APIError, got %T", err)
			}
			if apiErr.Status != 503 {
				t.Errorf("Expected status 503, got %d", apiErr.Status)
			}
			if apiErr.Message != tt.message {
				t.Errorf("Expected message %q, got %q", tt.message, apiErr.Message)
			}
		})
	}
}

func TestIsAuthExpiry(t *testing.T) {
	expired := &APIError{Status: 400, Message: "Error occurred at the OAuth process: Invalid_Grant"}
	if !expired.IsAuthExpiry() {
		t.Error("Expected invalid_grant to be recognized case-insensitively")
	}

	other := &APIError{Status: 404, Message: "not found"}
	if other.IsAuthExpiry() {
		t.Error("Unrelated errors must not look like auth expiry")
	}
}

func TestSetRefreshTokenTrims(t *testing.T) {
	client := NewClient(nil, "test-agent")
	client.SetRefreshToken("  token-value\n")
	if got := client.RefreshToken(); got != "token-value" {
		t.Errorf("Expected trimmed token, got %q", got)
	}
}
