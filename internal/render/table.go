package render

import (
	"strings"

	"github.com/beerlens/backend/internal/domain"
	"github.com/beerlens/backend/internal/usecase"
)

// LinkLabel is the text of the product page link in every table row
const LinkLabel = "商品ページ"

// Row is one line of the comparison table
type Row struct {
	Image       string   `json:"image"`
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Price       string   `json:"price"`
	UnitPrice   string   `json:"unitPrice,omitempty"`
	Capacity    string   `json:"capacity"`
	Description []string `json:"description"`
	LinkLabel   string   `json:"linkLabel"`
	HasError    bool     `json:"hasError"`
}

// Table converts comparison items into table rows, keeping their order
func Table(items []domain.ComparisonItem) []Row {
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		row := Row{
			Image:       item.Img,
			Name:        item.Name,
			URL:         item.URL,
			Price:       item.Price,
			Capacity:    item.Capacity,
			Description: descriptionLines(item.Description),
			LinkLabel:   LinkLabel,
			HasError:    item.HasError,
		}
		if !item.HasError {
			row.Price = usecase.FormatPrice(item.Price, item.NumInBox)
			if unit, ok := usecase.UnitPrice(item.Price, item.NumInBox); ok {
				row.UnitPrice = "¥" + unit.StringFixed(0)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func descriptionLines(description string) []string {
	text := usecase.NormalizeDescription(description)
	if text == "" {
		return []string{}
	}
	return strings.Split(text, "\n")
}
