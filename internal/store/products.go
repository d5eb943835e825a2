package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"shopstory/internal/product"
)

// Store reads and updates the products table the crawler fills.
type Store struct {
	pool *pgxpool.Pool
}

// PendingProduct is one row awaiting processing. VideoData is nil when the
// stored video_data is NULL or not valid JSON; those rows are skipped, not
// failed.
type PendingProduct struct {
	ID        int64
	VideoData *product.VideoData
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Pending returns products that have been crawled but not yet merged.
func (s *Store) Pending(ctx context.Context) ([]PendingProduct, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, video_data
		FROM public.products
		WHERE merge_status = FALSE AND crawl_status = TRUE
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query pending products: %w", err)
	}
	defer rows.Close()

	var products []PendingProduct
	for rows.Next() {
		var (
			id  int64
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}

		products = append(products, PendingProduct{
			ID:        id,
			VideoData: decodeVideoData(id, raw),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

// MarkMerged records a finished video and its public URL.
func (s *Store) MarkMerged(ctx context.Context, id int64, videoURL string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE public.products
		SET merge_status = TRUE,
		    r2_video_url = $1,
		    processed_at = NOW()
		WHERE id = $2
	`, videoURL, id)
	if err != nil {
		return fmt.Errorf("mark product %d merged: %w", id, err)
	}
	return nil
}

// SetCrawlStatus flips crawl_status, used to send a product with expired
// video URLs back to the crawler.
func (s *Store) SetCrawlStatus(ctx context.Context, id int64, status bool) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE public.products
		SET crawl_status = $1
		WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("set crawl_status for product %d: %w", id, err)
	}
	return nil
}

func decodeVideoData(id int64, raw []byte) *product.VideoData {
	if len(raw) == 0 {
		slog.Warn("Product has no video_data", "product_id", id)
		return nil
	}

	var vd product.VideoData
	if err := json.Unmarshal(raw, &vd); err != nil {
		slog.Warn("Product has invalid video_data", "product_id", id, "error", err)
		return nil
	}

	return &vd
}
