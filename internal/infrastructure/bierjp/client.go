package bierjp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/beerlens/backend/internal/domain"
	"github.com/beerlens/backend/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultDetailEndpoint is the item detail endpoint of the shop
	DefaultDetailEndpoint = "https://bier.jp/index.cgi"

	// maxBodyBytes caps how much of a response body is read
	maxBodyBytes = 5 << 20

	userAgent = "BeerLens/1.0"
)

// ClientConfig holds the settings of a Client
type ClientConfig struct {
	// ProxyBase is prefixed verbatim to every outbound URL (cross-origin relay)
	ProxyBase         string
	DetailEndpoint    string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Repairer          PayloadRepairer
}

// Client fetches product detail payloads and product pages.
// It implements domain.DetailProvider and domain.CapacityProvider.
type Client struct {
	httpClient     *http.Client
	proxyBase      string
	detailEndpoint string
	rateLimiter    *rate.Limiter
	repairer       PayloadRepairer
	logger         *zap.Logger
}

// NewClient creates a new shop client
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.DetailEndpoint == "" {
		cfg.DetailEndpoint = DefaultDetailEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Repairer == nil {
		cfg.Repairer = TrailingCommaRepairer{}
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		proxyBase:      cfg.ProxyBase,
		detailEndpoint: cfg.DetailEndpoint,
		rateLimiter:    rate.NewLimiter(limit, cfg.Burst),
		repairer:       cfg.Repairer,
		logger:         logging.OrNop(logger).Named("bierjp"),
	}
}

// get executes a rate limited GET and returns the body of a 200 response.
// Every failure is reported as domain.ErrTransport.
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", domain.ErrTransport, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %v", domain.ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("remote returned non-200",
			zap.String("url", reqURL),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", domain.ErrTransport, resp.StatusCode)
	}

	return body, nil
}
