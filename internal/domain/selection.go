package domain

// MaxSelection is the largest number of products that can be compared at once.
const MaxSelection = 4

// MinComparison is the smallest number of products a comparison run accepts.
const MinComparison = 2

// SelectionEntry is one product chosen for comparison.
type SelectionEntry struct {
	Key       string `json:"key"`
	SourceURL string `json:"url"`
	ImageURL  string `json:"img"`
}

// AddSelectionRequest represents a request to add a product to the selection
type AddSelectionRequest struct {
	Key       string `json:"key" binding:"required"`
	SourceURL string `json:"url" binding:"required"`
	ImageURL  string `json:"img,omitempty"`
}
