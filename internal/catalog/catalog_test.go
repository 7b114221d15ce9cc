package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name        string
		doc         string
		wantIDs     []string
		wantDropped int
	}{
		{"array", `[{"id":"a","title":"A","price":100},{"id":"b","price":"2 000 ₽"}]`, []string{"a", "b"}, 0},
		{"wrapped", `{"products":[{"id":"a"}]}`, []string{"a"}, 0},
		{"malformed", `[{"id":"a"`, []string{}, 0},
		{"wrong shape", `"hello"`, []string{}, 0},
		{"object without products", `{"items":[{"id":"a"}]}`, []string{}, 0},
		{"drops bad rows", `[{"title":"no id"}, 3, null, {"id":"a"}, {"id":"a"}]`, []string{"a"}, 4},
		{"numeric ids", `[{"id":12}]`, []string{"12"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, dropped := Decode(strings.NewReader(tt.doc))

			ids := make([]string, 0, len(products))
			for _, p := range products {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantDropped, dropped)
		})
	}
}

func TestDecode_CoercesFields(t *testing.T) {
	products, _ := Decode(strings.NewReader(
		`[{"id":"a","title":" Roses ","price":"1 500 ₽","image":"r.jpg","excerpt":"red","href":"/r"},{"id":"b","price":-5}]`))
	require.Len(t, products, 2)

	assert.Equal(t, Product{ID: "a", Title: "Roses", Price: 1500, Img: "r.jpg", Excerpt: "red", Href: "/r"}, products[0])
	assert.Equal(t, 0.0, products[1].Price)
}

func TestMemStore_KeepsDocumentOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore(Product{ID: "z"}, Product{ID: "a"}, Product{ID: "z", Title: "dup"}, Product{ID: "m"})

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "z", list[0].ID)
	assert.Equal(t, "", list[0].Title)
	assert.Equal(t, "m", list[2].ID)

	p, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", p.ID)

	_, ok, err = s.Get(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewCard(t *testing.T) {
	c := NewCard(Product{ID: "p 1", Title: "Roses", Price: 4500, Img: "r.jpg"})

	assert.Equal(t, "/product.html?sku=p+1", c.Href)
	assert.Contains(t, c.PriceLabel, "₽")
	assert.JSONEq(t,
		`{"id":"p 1","title":"Roses","price":4500,"img":"r.jpg","excerpt":"","href":"/product.html?sku=p+1"}`,
		c.Payload)

	c = NewCard(Product{ID: "x", Href: "/custom"})
	assert.Equal(t, "/custom", c.Href)
}

func TestRenderCards(t *testing.T) {
	var sb strings.Builder
	err := RenderCards(&sb, Cards([]Product{
		{ID: "a", Title: `Roses <b>"red"</b>`, Price: 500, Img: "a.jpg", Excerpt: "fresh"},
		{ID: "b", Title: "Tulips", Price: 300},
	}))
	require.NoError(t, err)

	html := sb.String()
	assert.Equal(t, 2, strings.Count(html, `class="product-card"`))
	assert.Equal(t, 2, strings.Count(html, "data-add-to-cart"))
	assert.Equal(t, 1, strings.Count(html, "product-card__excerpt"))
	assert.NotContains(t, html, "<b>", "titles must be escaped")
	assert.Contains(t, html, `data-product="{&#34;id&#34;:&#34;a&#34;`)
}

func TestUpsell(t *testing.T) {
	list := Upsell()
	require.Len(t, list, 4)
	assert.Equal(t, "add-001", list[0].ID)

	list[0].ID = "mutated"
	assert.Equal(t, "add-001", Upsell()[0].ID)
}
