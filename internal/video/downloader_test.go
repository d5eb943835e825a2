package video

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestDownload(t *testing.T) {
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Path)
		if got := r.Header.Get("Referer"); got != "https://shopee.vn/" {
			t.Errorf("Referer = %q", got)
		}
		_, _ = w.Write([]byte("fake video bytes"))
	}))
	defer server.Close()

	dir := t.TempDir()
	d := NewDownloader(nil)

	urls := []string{server.URL + "/v0.mp4", server.URL + "/v1.mp4"}
	if err := d.Download(context.Background(), urls, dir); err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	if len(requests) != 2 {
		t.Errorf("requests = %d, want 2", len(requests))
	}

	for i := 0; i < 2; i++ {
		path := filepath.Join(dir, "video_"+string(rune('0'+i))+".mp4")
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("clip %d not written: %v", i, err)
		}
		if string(data) != "fake video bytes" {
			t.Errorf("clip %d content = %q", i, data)
		}
	}
}

func TestDownloadNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	d := NewDownloader(nil)

	err := d.Download(context.Background(), []string{server.URL + "/gone.mp4"}, t.TempDir())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestDownloadEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewDownloader(nil)

	if err := d.Download(context.Background(), []string{server.URL + "/empty.mp4"}, t.TempDir()); err == nil {
		t.Error("Download() expected error for empty body")
	}
}

func TestDownloadForbidden(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	d := NewDownloader(nil)

	err := d.Download(context.Background(), []string{server.URL + "/v.mp4"}, t.TempDir())
	if err == nil {
		t.Fatal("Download() expected error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("403 should not map to ErrNotFound")
	}
}
