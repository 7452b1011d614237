package bierjp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/beerlens/backend/internal/domain"
	"go.uber.org/zap"
)

// capacityLabel is the label cell text of the capacity row
const capacityLabel = "容量"

// FetchCapacity downloads a product page and returns the raw capacity text
func (c *Client) FetchCapacity(ctx context.Context, pageURL string) (string, error) {
	if pageURL == "" {
		return "", fmt.Errorf("%w: empty page url", domain.ErrInvalidRequest)
	}

	body, err := c.get(ctx, c.proxyBase+pageURL)
	if err != nil {
		c.logger.Warn("capacity fetch failed", zap.String("url", pageURL), zap.Error(err))
		return "", err
	}

	capacity, err := ExtractCapacity(bytes.NewReader(body))
	if err != nil {
		c.logger.Debug("capacity not extracted", zap.String("url", pageURL), zap.Error(err))
		return "", err
	}
	return capacity, nil
}

// ExtractCapacity scans every table row for a pair of spec_column cells whose first
// cell reads 容量 and returns the second cell's text without a leading colon.
// When several rows match the last one wins.
func ExtractCapacity(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	capacity := ""
	found := false
	doc.Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td.spec_column")
		if cells.Length() < 2 {
			return
		}
		if strings.TrimSpace(cells.Eq(0).Text()) != capacityLabel {
			return
		}
		capacity = cleanCellText(cells.Eq(1).Text())
		found = true
	})

	if !found {
		return "", domain.ErrCapacityNotFound
	}
	return capacity, nil
}

// cleanCellText trims whitespace and a leading ASCII or full-width colon
func cleanCellText(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimLeft(text, ":：")
	return strings.TrimSpace(text)
}
