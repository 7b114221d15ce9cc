package catalog

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"BloomStore/internal/money"
)

// Decode reads a catalog document: either a JSON array of products or an
// object with a "products" array. Malformed input yields an empty list.
// dropped counts entries that could not be used.
func Decode(r io.Reader) (products []Product, dropped int) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return []Product{}, 0
	}

	var rows []any
	switch v := doc.(type) {
	case []any:
		rows = v
	case map[string]any:
		rows, _ = v["products"].([]any)
	}

	products = make([]Product, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		p, ok := productFrom(row)
		if !ok || seen[p.ID] {
			dropped++
			continue
		}
		seen[p.ID] = true
		products = append(products, p)
	}
	return products, dropped
}

func productFrom(row any) (Product, bool) {
	m, ok := row.(map[string]any)
	if !ok {
		return Product{}, false
	}

	p := Product{
		ID:      str(m["id"]),
		Title:   str(m["title"]),
		Price:   money.Parse(m["price"]),
		Img:     str(m["img"]),
		Excerpt: str(m["excerpt"]),
		Href:    str(m["href"]),
	}
	if p.ID == "" {
		return Product{}, false
	}
	if p.Img == "" {
		p.Img = str(m["image"])
	}
	if p.Price < 0 {
		p.Price = 0
	}
	return p, true
}

func str(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}
