package video

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"shopstory/pkg/httputil"
)

// ErrNotFound marks clips the CDN no longer serves. The caller reacts by
// flagging the product for a re-crawl instead of failing the batch.
var ErrNotFound = errors.New("video not found")

// Shopee's CDN rejects bare requests, so downloads imitate a browser.
var downloadHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Referer":         "https://shopee.vn/",
	"Accept":          "video/webm,video/ogg,video/*;q=0.9,application/ogg;q=0.7,audio/*;q=0.6,*/*;q=0.5",
	"Accept-Language": "vi-VN,vi;q=0.9,en-US;q=0.8,en;q=0.7",
}

type Downloader struct {
	client *httputil.RetryClient
}

func NewDownloader(client *httputil.RetryClient) *Downloader {
	if client == nil {
		client = httputil.NewRetryClient(nil, httputil.DefaultRetryConfig())
	}
	return &Downloader{client: client}
}

// Download fetches each clip URL into dir as video_<i>.mp4, in order.
func (d *Downloader) Download(ctx context.Context, urls []string, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create videos directory: %w", err)
	}

	for i, url := range urls {
		path := filepath.Join(dir, fmt.Sprintf("video_%d.mp4", i))
		if err := d.downloadOne(ctx, url, path); err != nil {
			return fmt.Errorf("clip %d: %w", i, err)
		}
	}

	return nil
}

func (d *Downloader) downloadOne(ctx context.Context, url, path string) error {
	resp, err := d.client.Get(ctx, url, downloadHeaders)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if n == 0 {
		return fmt.Errorf("downloaded file is empty: %s", url)
	}

	return nil
}
