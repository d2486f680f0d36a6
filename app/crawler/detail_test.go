package crawler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchDetailMetaTags(t *testing.T) {
	published := time.Date(2025, 3, 27, 2, 15, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><head>
			<meta name="description" content="Mô tả từ meta">
			<meta property="article:published_time" content="%s">
		</head><body></body></html>`, published.Format(time.RFC3339))
	}))
	defer server.Close()

	service := newListingService(t)

	detail, err := service.fetchDetail(server.URL, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if detail.Description != "Mô tả từ meta" {
		t.Errorf("Expected meta description, got %q", detail.Description)
	}
	if detail.PostTime != published.Unix() {
		t.Errorf("Expected published time %d, got %d", published.Unix(), detail.PostTime)
	}
}

func TestFetchDetailFallbackChain(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head></head><body>
			<p class="sapo">Sapo mở đầu bài viết</p>
			<span class="time-ago">2 giờ trước</span>
		</body></html>`)
	}))
	defer server.Close()

	service := newListingService(t)
	now := time.Date(2025, 3, 27, 10, 0, 0, 0, time.UTC)

	detail, err := service.fetchDetail(server.URL, now)
	if err != nil {
		t.Fatal(err)
	}
	if detail.Description != "Sapo mở đầu bài viết" {
		t.Errorf("Expected sapo description, got %q", detail.Description)
	}
	if detail.PostTime != now.Add(-2*time.Hour).Unix() {
		t.Errorf("Expected relative time resolved, got %d", detail.PostTime)
	}
}

func TestFetchDetailDefaultsOnFailure(t *testing.T) {
	service := newListingService(t)
	now := time.Date(2025, 3, 27, 10, 0, 0, 0, time.UTC)

	detail, err := service.fetchDetail("http://127.0.0.1:1/bai-viet", now)
	if err == nil {
		t.Error("Expected error from unreachable host")
	}
	if detail.Description != noDescription {
		t.Errorf("Expected default description, got %q", detail.Description)
	}
	if detail.PostTime != now.Unix() {
		t.Errorf("Expected now fallback, got %d", detail.PostTime)
	}
}

func TestFetchDetailEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head></head><body></body></html>`)
	}))
	defer server.Close()

	service := newListingService(t)
	now := time.Date(2025, 3, 27, 10, 0, 0, 0, time.UTC)

	detail, err := service.fetchDetail(server.URL, now)
	if err != nil {
		t.Fatal(err)
	}
	if detail.Description != noDescription {
		t.Errorf("Expected default description for empty page, got %q", detail.Description)
	}
	if detail.PostTime != now.Unix() {
		t.Errorf("Expected now fallback for empty page, got %d", detail.PostTime)
	}
}
