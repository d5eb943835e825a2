package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// Uploader pushes finished videos to a GCS bucket and hands back the URL that
// gets written to the product row.
type Uploader struct {
	client        *storage.Client
	bucket        string
	prefix        string
	publicBaseURL string
}

func NewUploader(ctx context.Context, bucket, prefix, publicBaseURL string, opts ...option.ClientOption) (*Uploader, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &Uploader{
		client:        client,
		bucket:        bucket,
		prefix:        prefix,
		publicBaseURL: publicBaseURL,
	}, nil
}

func (u *Uploader) Close() error {
	return u.client.Close()
}

// UploadVideo stores the file under a key derived from the product and
// returns the public URL.
func (u *Uploader) UploadVideo(ctx context.Context, localPath string, productID int64, productName string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open video: %w", err)
	}
	defer func() { _ = f.Close() }()

	key := u.objectKey(productID, productName)

	w := u.client.Bucket(u.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "video/mp4"
	w.Metadata = map[string]string{
		"product_id":   strconv.FormatInt(productID, 10),
		"processed_at": time.Now().Format(time.RFC3339),
	}

	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload video: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}

	return u.publicURL(key), nil
}

func (u *Uploader) objectKey(productID int64, productName string) string {
	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("%s/%s_product_%d_%s.mp4", u.prefix, timestamp, productID, slugify(productName))
}

func (u *Uploader) publicURL(key string) string {
	if u.publicBaseURL != "" {
		return strings.TrimSuffix(u.publicBaseURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucket, key)
}

// slugify keeps object keys filesystem- and URL-safe, capped at 50 chars like
// the rest of the naming scheme expects.
func slugify(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	slug := b.String()
	if len(slug) > 50 {
		slug = slug[:50]
	}
	return slug
}
