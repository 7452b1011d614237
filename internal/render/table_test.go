package render

import (
	"testing"

	"github.com/beerlens/backend/internal/domain"
	"github.com/google/go-cmp/cmp"
)

func TestTable(t *testing.T) {
	items := []domain.ComparisonItem{
		{
			Name:        "IPA 6本セット",
			URL:         "https://bier.jp/itemdetail/100",
			Img:         "https://bier.jp/images/100.jpg",
			Price:       "¥1,200",
			Description: "<p>Hoppy</p><br>Citrus aroma<br>Ignored tail",
			NumInBox:    4,
			Capacity:    "350ml",
		},
		{
			Name:        "Stout",
			URL:         "https://bier.jp/itemdetail/200",
			Price:       "¥480",
			Description: "",
			NumInBox:    1,
			Capacity:    domain.CapacityNotFoundSentinel,
		},
		{
			Name:        "Broken",
			URL:         "https://bier.jp/itemdetail/300",
			Price:       domain.FailureSentinel,
			Description: domain.FailureSentinel,
			NumInBox:    1,
			Capacity:    domain.FailureSentinel,
			HasError:    true,
		},
	}

	want := []Row{
		{
			Image:       "https://bier.jp/images/100.jpg",
			Name:        "IPA 6本セット",
			URL:         "https://bier.jp/itemdetail/100",
			Price:       "¥1,200 (1本あたり ¥300)",
			UnitPrice:   "¥300",
			Capacity:    "350ml",
			Description: []string{"Hoppy", "Citrus aroma"},
			LinkLabel:   LinkLabel,
		},
		{
			Name:        "Stout",
			URL:         "https://bier.jp/itemdetail/200",
			Price:       "¥480",
			Capacity:    domain.CapacityNotFoundSentinel,
			Description: []string{},
			LinkLabel:   LinkLabel,
		},
		{
			Name:        "Broken",
			URL:         "https://bier.jp/itemdetail/300",
			Price:       domain.FailureSentinel,
			Capacity:    domain.FailureSentinel,
			Description: []string{domain.FailureSentinel},
			LinkLabel:   LinkLabel,
			HasError:    true,
		},
	}

	if diff := cmp.Diff(want, Table(items)); diff != "" {
		t.Errorf("Table() mismatch (-want +got):\n%s", diff)
	}
}

func TestTable_Empty(t *testing.T) {
	rows := Table(nil)
	if rows == nil || len(rows) != 0 {
		t.Errorf("Table(nil) = %#v, want empty non-nil slice", rows)
	}
}
