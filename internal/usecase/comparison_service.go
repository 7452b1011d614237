package usecase

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/beerlens/backend/internal/domain"
	"github.com/beerlens/backend/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Failure kinds reported to the observer
const (
	kindTransport        = "transport"
	kindMalformedPayload = "malformed_payload"
	kindMissingField     = "missing_field"
	kindInvalidRequest   = "invalid_request"
	kindCancelled        = "cancelled"
	kindOther            = "other"
)

// ComparisonServiceConfig holds configuration for the comparison service
type ComparisonServiceConfig struct {
	// EntryConcurrency bounds how many entries are fetched at once.
	// Each entry issues two requests, so peak in-flight requests is twice this.
	EntryConcurrency int
}

// ComparisonService assembles comparison items from remote product data
type ComparisonService struct {
	details          domain.DetailProvider
	capacities       domain.CapacityProvider
	entryConcurrency int
	observer         domain.ComparisonObserver
	logger           *zap.Logger
}

// NewComparisonService creates a new comparison service with dependencies
func NewComparisonService(
	details domain.DetailProvider,
	capacities domain.CapacityProvider,
	config ComparisonServiceConfig,
	observer domain.ComparisonObserver,
	logger *zap.Logger,
) *ComparisonService {
	concurrency := config.EntryConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	if observer == nil {
		observer = domain.NopObserver{}
	}

	return &ComparisonService{
		details:          details,
		capacities:       capacities,
		entryConcurrency: concurrency,
		observer:         observer,
		logger:           logging.OrNop(logger).Named("comparison"),
	}
}

// Run builds one ComparisonItem per entry, in entry order.
// Fewer than two entries fail with domain.ErrInsufficientSelection before any
// request is made. A failing entry degrades to sentinel values and is counted
// in ErrorCount; it never aborts the run. onProgress may be nil.
func (s *ComparisonService) Run(
	ctx context.Context,
	entries []domain.SelectionEntry,
	onProgress domain.ProgressFunc,
) (*domain.ComparisonResult, error) {
	if len(entries) < domain.MinComparison {
		s.observer.RunFinished(domain.OutcomeInsufficient, len(entries), 0)
		return nil, domain.ErrInsufficientSelection
	}

	// Work on a snapshot so later selection changes are not observed
	snapshot := make([]domain.SelectionEntry, len(entries))
	copy(snapshot, entries)
	total := len(snapshot)

	items := make([]domain.ComparisonItem, total)
	var (
		mu         sync.Mutex
		completed  int
		errorCount int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.entryConcurrency)

	for i, entry := range snapshot {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			item, err := s.compareEntry(gctx, entry)

			mu.Lock()
			defer mu.Unlock()

			items[i] = item
			if err != nil {
				errorCount++
				s.observer.ItemFailed(failureKind(err))
				s.logger.Warn("comparison item degraded",
					zap.String("key", entry.Key),
					zap.String("url", entry.SourceURL),
					zap.Error(err))
			}
			completed++
			if onProgress != nil {
				onProgress(completed, total)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.observer.RunFinished(domain.OutcomeCancelled, total, errorCount)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		s.observer.RunFinished(domain.OutcomeCancelled, total, errorCount)
		return nil, err
	}

	s.observer.RunFinished(domain.OutcomeCompleted, total, errorCount)
	s.logger.Info("comparison finished",
		zap.Int("items", total),
		zap.Int("errors", errorCount))

	return &domain.ComparisonResult{
		Items:      items,
		ErrorCount: errorCount,
	}, nil
}

// compareEntry fetches detail and capacity of one entry concurrently and merges them.
// The returned error explains why the item was degraded.
func (s *ComparisonService) compareEntry(ctx context.Context, entry domain.SelectionEntry) (domain.ComparisonItem, error) {
	var (
		wg          sync.WaitGroup
		detail      *domain.ProductDetail
		detailErr   error
		capacity    string
		capacityErr error
	)

	productID := ProductIDFromURL(entry.SourceURL)

	wg.Add(2)
	go func() {
		defer wg.Done()
		if productID == "" {
			detailErr = domain.ErrInvalidRequest
			return
		}
		start := time.Now()
		detail, detailErr = s.details.FetchDetail(ctx, productID)
		s.observer.FetchObserved(domain.SourceDetail, time.Since(start), detailErr)
	}()
	go func() {
		defer wg.Done()
		start := time.Now()
		capacity, capacityErr = s.capacities.FetchCapacity(ctx, entry.SourceURL)
		s.observer.FetchObserved(domain.SourceCapacity, time.Since(start), capacityErr)
	}()
	wg.Wait()

	return mergeItem(entry, detail, detailErr, capacity, capacityErr)
}

// mergeItem combines the two fetch results into a ComparisonItem.
// A missing capacity row is not a failure; every other error is.
// An empty description shows the failure sentinel but does not flag the item.
func mergeItem(
	entry domain.SelectionEntry,
	detail *domain.ProductDetail,
	detailErr error,
	capacity string,
	capacityErr error,
) (domain.ComparisonItem, error) {
	item := domain.ComparisonItem{
		Name:     entry.Key,
		URL:      entry.SourceURL,
		Img:      entry.ImageURL,
		NumInBox: 1,
	}

	if detailErr == nil && (detail == nil || strings.TrimSpace(detail.Price) == "") {
		detailErr = domain.ErrMissingField
	}
	if capacityErr != nil && errors.Is(capacityErr, domain.ErrCapacityNotFound) {
		capacityErr = nil
		capacity = domain.CapacityNotFoundSentinel
	}

	if err := errors.Join(detailErr, capacityErr); err != nil {
		item.Price = domain.FailureSentinel
		item.Description = domain.FailureSentinel
		item.Capacity = domain.FailureSentinel
		item.HasError = true
		return item, err
	}

	item.Price = detail.Price
	item.Description = detail.Description
	if strings.TrimSpace(item.Description) == "" {
		item.Description = domain.FailureSentinel
	}
	if detail.NumInBox > 1 {
		item.NumInBox = detail.NumInBox
	}
	item.Capacity = NormalizeCapacity(capacity)
	return item, nil
}

// NormalizeCapacity maps the "0ml" a set product reports to the bundle sentinel
func NormalizeCapacity(capacity string) string {
	if capacity == "0ml" {
		return domain.BundleSentinel
	}
	return capacity
}

// ProductIDFromURL returns the trailing path segment of a product page URL
func ProductIDFromURL(sourceURL string) string {
	path := sourceURL
	if u, err := url.Parse(sourceURL); err == nil {
		path = u.Path
	}
	return path[strings.LastIndex(path, "/")+1:]
}

// failureKind classifies the cause of a degraded item for metrics
func failureKind(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return kindCancelled
	case errors.Is(err, domain.ErrTransport):
		return kindTransport
	case errors.Is(err, domain.ErrMalformedPayload):
		return kindMalformedPayload
	case errors.Is(err, domain.ErrMissingField):
		return kindMissingField
	case errors.Is(err, domain.ErrInvalidRequest):
		return kindInvalidRequest
	default:
		return kindOther
	}
}
