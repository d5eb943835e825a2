package product

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ProductInfo is the crawled product metadata as stored in video_data.
// Prices keep the shop's display formatting ("269.000₫").
type ProductInfo struct {
	Name          string `json:"name"`
	Price         string `json:"price"`
	OriginalPrice string `json:"originalPrice"`
	Discount      string `json:"discount"`
}

type Video struct {
	URL string `json:"url"`
}

type VideoData struct {
	ProductInfo ProductInfo `json:"productInfo"`
	Videos      []Video     `json:"videos"`
}

func Load(path string) (*VideoData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read video data: %w", err)
	}

	var vd VideoData
	if err := json.Unmarshal(data, &vd); err != nil {
		return nil, fmt.Errorf("parse video data: %w", err)
	}

	return &vd, nil
}

// FormatPrice shortens a display price for spoken Vietnamese:
// "269.000₫" becomes "269k". The ".000₫" substitution must run before the
// bare "₫" one, otherwise the thousands suffix would survive as "269.000k".
// Strings without a ₫ sign pass through unchanged.
func FormatPrice(price string) string {
	price = strings.ReplaceAll(price, ".000₫", "k")
	price = strings.ReplaceAll(price, "₫", "k")
	return price
}
