package bierjp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/beerlens/backend/internal/domain"
	"go.uber.org/zap"
)

// detailEnvelope is the body of the item detail endpoint
type detailEnvelope struct {
	Data *detailPayload `json:"data"`
}

// detailPayload carries the fields of one item; the shop sends numbers and
// strings interchangeably for Price and NumInBox.
type detailPayload struct {
	Price       flexString `json:"Price"`
	Description flexString `json:"Description"`
	NumInBox    flexInt    `json:"NumInBox"`
}

// flexString accepts a JSON string or number
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", trimmed)
	}
	*f = flexString(n.String())
	return nil
}

// flexInt accepts a JSON number, a numeric string, a boolean or null.
// Anything that is not a positive count decodes to 0.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch trimmed {
	case "null", "false", "true", `""`:
		*f = 0
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
			return err
		}
		trimmed = strings.TrimSpace(s)
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || n < 0 {
		*f = 0
		return nil
	}
	*f = flexInt(n)
	return nil
}

// FetchDetail retrieves the price, description and box quantity of a product
func (c *Client) FetchDetail(ctx context.Context, productID string) (*domain.ProductDetail, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: empty product id", domain.ErrInvalidRequest)
	}

	reqURL := c.detailURL(productID)
	body, err := c.get(ctx, reqURL)
	if err != nil {
		c.logger.Warn("detail fetch failed", zap.String("productId", productID), zap.Error(err))
		return nil, err
	}

	detail, err := DecodeDetail(body, c.repairer)
	if err != nil {
		c.logger.Warn("detail decode failed", zap.String("productId", productID), zap.Error(err))
		return nil, err
	}

	c.logger.Debug("detail fetched",
		zap.String("productId", productID),
		zap.String("price", detail.Price),
		zap.Int("numInBox", detail.NumInBox))
	return detail, nil
}

// detailURL builds {proxyBase}{detailEndpoint}?t=itemdetail&id={id}&output=json
func (c *Client) detailURL(productID string) string {
	return fmt.Sprintf("%s%s?t=itemdetail&id=%s&output=json",
		c.proxyBase, c.detailEndpoint, url.QueryEscape(productID))
}

// DecodeDetail repairs and parses a detail payload.
// A missing or empty price is reported as domain.ErrMissingField; NumInBox
// defaults to 1.
func DecodeDetail(body []byte, repairer PayloadRepairer) (*domain.ProductDetail, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty body", domain.ErrTransport)
	}
	if repairer == nil {
		repairer = TrailingCommaRepairer{}
	}

	fixed, err := repairer.Repair(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	var envelope detailEnvelope
	if err := json.Unmarshal(fixed, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	if envelope.Data == nil || strings.TrimSpace(string(envelope.Data.Price)) == "" {
		return nil, domain.ErrMissingField
	}

	numInBox := int(envelope.Data.NumInBox)
	if numInBox < 1 {
		numInBox = 1
	}

	return &domain.ProductDetail{
		Price:       string(envelope.Data.Price),
		Description: string(envelope.Data.Description),
		NumInBox:    numInBox,
	}, nil
}
