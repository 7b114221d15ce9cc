package cart

import (
	"context"

	"BloomStore/internal/money"
)

type Line struct {
	LineItem
	LineTotal      float64 `json:"line_total"`
	PriceLabel     string  `json:"price_label"`
	LineTotalLabel string  `json:"line_total_label"`
}

// Summary is what the cart modal shows: lines, badge count and grand total.
type Summary struct {
	Items      []Line  `json:"items"`
	Count      int     `json:"count"`
	Total      float64 `json:"total"`
	TotalLabel string  `json:"total_label"`
}

func Summarize(items []LineItem) Summary {
	lines := make([]Line, 0, len(items))
	totals := make([]float64, 0, len(items))

	for _, li := range items {
		lt := money.LineTotal(li.Price, li.Qty)
		totals = append(totals, lt)
		lines = append(lines, Line{
			LineItem:       li,
			LineTotal:      lt,
			PriceLabel:     money.Format(li.Price),
			LineTotalLabel: money.Format(lt),
		})
	}

	total := money.Sum(totals...)
	return Summary{
		Items:      lines,
		Count:      countOf(items),
		Total:      total,
		TotalLabel: money.Format(total),
	}
}

func (s *Store) Summary(ctx context.Context, session string) Summary {
	return Summarize(s.Items(ctx, session))
}
