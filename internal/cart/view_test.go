package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	sum := Summarize([]LineItem{
		{ID: "a", Title: "Roses", Price: 500, Qty: 3},
		{ID: "b", Title: "Card", Price: 0, Qty: 1},
		{ID: "c", Title: "Vase", Price: 0.1, Qty: 3},
	})

	assert.Equal(t, 7, sum.Count)
	assert.Equal(t, 1500.3, sum.Total)
	assert.Len(t, sum.Items, 3)
	assert.Equal(t, 1500.0, sum.Items[0].LineTotal)
	assert.Equal(t, 0.3, sum.Items[2].LineTotal)
	assert.Equal(t, "0 ₽", sum.Items[1].LineTotalLabel)
	assert.Contains(t, sum.TotalLabel, "₽")
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(nil)

	assert.NotNil(t, sum.Items)
	assert.Zero(t, sum.Count)
	assert.Zero(t, sum.Total)
	assert.Equal(t, "0 ₽", sum.TotalLabel)
}
