package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/beerlens/backend/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	nonNumericRegex    = regexp.MustCompile(`[^0-9.]`)
	leadingNumberRegex = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)`)
)

// UnitPrice divides the magnitude found in price by the box quantity and
// rounds to whole currency units. ok is false when the quantity is not above
// one or the price holds no number.
func UnitPrice(price string, numInBox int) (unit decimal.Decimal, ok bool) {
	if numInBox <= 1 {
		return decimal.Zero, false
	}

	magnitude := leadingNumberRegex.FindString(nonNumericRegex.ReplaceAllString(price, ""))
	magnitude = strings.TrimSuffix(magnitude, ".")
	if magnitude == "" {
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(magnitude)
	if err != nil {
		return decimal.Zero, false
	}

	return amount.Div(decimal.NewFromInt(int64(numInBox))).Round(0), true
}

// FormatPrice renders the price with a per-bottle breakdown when one applies,
// e.g. "¥1,200 (1本あたり ¥300)".
func FormatPrice(price string, numInBox int) string {
	if price == domain.FailureSentinel {
		return price
	}
	unit, ok := UnitPrice(price, numInBox)
	if !ok {
		return price
	}
	return fmt.Sprintf("%s (1本あたり ¥%s)", price, unit.StringFixed(0))
}
