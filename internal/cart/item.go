package cart

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"BloomStore/internal/money"
)

type LineItem struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Price   float64 `json:"price"`
	Img     string  `json:"img"`
	Excerpt string  `json:"excerpt"`
	Qty     int     `json:"qty"`
}

// ItemInput describes an "add to cart" request. Nil fields were not
// supplied and leave an existing line's value alone.
type ItemInput struct {
	ID      string
	Title   *string
	Price   *float64
	Img     *string
	Excerpt *string
}

func (in ItemInput) newLine(qty int) LineItem {
	return LineItem{
		ID:      in.ID,
		Title:   deref(in.Title),
		Price:   clampPrice(derefFloat(in.Price)),
		Img:     deref(in.Img),
		Excerpt: deref(in.Excerpt),
		Qty:     qty,
	}
}

func (in ItemInput) mergeInto(li *LineItem, qty int) {
	li.Qty = addQty(li.Qty, qty)
	if in.Title != nil {
		li.Title = *in.Title
	}
	if in.Price != nil {
		li.Price = clampPrice(*in.Price)
	}
	if in.Img != nil {
		li.Img = *in.Img
	}
	if in.Excerpt != nil {
		li.Excerpt = *in.Excerpt
	}
}

// decodeItems parses whatever is stored under the cart key. Anything that is
// not a JSON array yields an empty cart; entries are coerced one by one.
func decodeItems(raw []byte) []LineItem {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var rows []any
	if err := dec.Decode(&rows); err != nil {
		return []LineItem{}
	}

	out := make([]LineItem, 0, len(rows))
	index := make(map[string]int, len(rows))
	for _, row := range rows {
		li, ok := coerceRow(row)
		if !ok {
			continue
		}
		// older writers could leave duplicate ids behind
		if i, dup := index[li.ID]; dup {
			out[i].Qty = addQty(out[i].Qty, li.Qty)
			continue
		}
		index[li.ID] = len(out)
		out = append(out, li)
	}
	return out
}

func coerceRow(row any) (LineItem, bool) {
	m, ok := row.(map[string]any)
	if !ok {
		return LineItem{}, false
	}

	id := coerceString(m["id"])
	if id == "" {
		return LineItem{}, false
	}

	return LineItem{
		ID:      id,
		Title:   coerceString(m["title"]),
		Price:   clampPrice(money.Parse(m["price"])),
		Img:     coerceString(m["img"]),
		Excerpt: coerceString(m["excerpt"]),
		Qty:     coerceQty(firstPresent(m, "qty", "quantity", "count")),
	}, true
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func coerceString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

func coerceQty(v any) int {
	var f float64
	switch x := v.(type) {
	case json.Number:
		f, _ = x.Float64()
	case string:
		f, _ = strconv.ParseFloat(strings.TrimSpace(x), 64)
	case float64:
		f = x
	}
	if math.IsNaN(f) || f < 1 {
		return 1
	}
	if f > MaxQty {
		return MaxQty
	}
	return int(f)
}

// clampQty keeps a quantity within [1, MaxQty].
func clampQty(n int) int {
	return min(max(n, 1), MaxQty)
}

// addQty moves q by delta and saturates at the quantity bounds.
func addQty(q, delta int) int {
	d := min(max(int64(delta), -MaxQty), MaxQty)
	return int(min(max(int64(clampQty(q))+d, 1), MaxQty))
}

func clampPrice(p float64) float64 {
	if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return p
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefFloat(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func countOf(items []LineItem) int {
	n := 0
	for _, li := range items {
		n += li.Qty
	}
	return n
}
