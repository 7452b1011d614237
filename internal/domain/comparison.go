package domain

// Sentinel values shown in place of remote data.
const (
	// FailureSentinel replaces price, description and capacity when a fetch fails.
	FailureSentinel = "取得失敗"

	// CapacityNotFoundSentinel is shown when the product page has no capacity row.
	CapacityNotFoundSentinel = "情報なし"

	// BundleSentinel replaces a "0ml" capacity, which marks a multi-unit set.
	BundleSentinel = "セット商品"
)

// ComparisonItem is the merged view of one selected product.
// It is rebuilt on every run and never persisted.
type ComparisonItem struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Img         string `json:"img"`
	Price       string `json:"price"`
	Description string `json:"description"`
	NumInBox    int    `json:"numInBox"`
	Capacity    string `json:"capacity"`
	HasError    bool   `json:"hasError"`
}

// ComparisonResult is the outcome of one comparison run.
type ComparisonResult struct {
	Items      []ComparisonItem `json:"items"`
	ErrorCount int              `json:"errorCount"`
}

// ProductDetail is the structured detail record returned by the detail endpoint.
type ProductDetail struct {
	Price       string `json:"price"`
	Description string `json:"description"`
	NumInBox    int    `json:"numInBox"`
}

// ProgressFunc is called once per completed entry with the number of completed entries and the total.
type ProgressFunc func(current, total int)
