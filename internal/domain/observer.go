package domain

import "time"

// Run outcomes reported to a ComparisonObserver
const (
	OutcomeCompleted    = "completed"
	OutcomeInsufficient = "insufficient"
	OutcomeCancelled    = "cancelled"
)

// Fetch sources reported to a ComparisonObserver
const (
	SourceDetail   = "detail"
	SourceCapacity = "capacity"
)

// ComparisonObserver receives measurements from the selection and comparison services
type ComparisonObserver interface {
	RunFinished(outcome string, items, errorCount int)
	ItemFailed(kind string)
	FetchObserved(source string, duration time.Duration, err error)
	SelectionRejected()
}

// NopObserver discards every measurement
type NopObserver struct{}

func (NopObserver) RunFinished(string, int, int)               {}
func (NopObserver) ItemFailed(string)                          {}
func (NopObserver) FetchObserved(string, time.Duration, error) {}
func (NopObserver) SelectionRejected()                         {}
