package catalog

import (
	"encoding/json"
	"html/template"
	"io"
	"net/url"

	"BloomStore/internal/money"
)

// Card is a product prepared for display. Payload is the data-product
// attribute the cart reads when the card's add button is pressed.
type Card struct {
	Product
	PriceLabel string `json:"price_label"`
	Payload    string `json:"payload"`
}

type cardPayload struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Price   float64 `json:"price"`
	Img     string  `json:"img"`
	Excerpt string  `json:"excerpt"`
	Href    string  `json:"href"`
}

func NewCard(p Product) Card {
	if p.Href == "" {
		p.Href = "/product.html?" + url.Values{"sku": {p.ID}}.Encode()
	}

	raw, _ := json.Marshal(cardPayload{
		ID:      p.ID,
		Title:   p.Title,
		Price:   p.Price,
		Img:     p.Img,
		Excerpt: p.Excerpt,
		Href:    p.Href,
	})

	return Card{
		Product:    p,
		PriceLabel: money.Format(p.Price),
		Payload:    string(raw),
	}
}

func Cards(products []Product) []Card {
	out := make([]Card, 0, len(products))
	for _, p := range products {
		out = append(out, NewCard(p))
	}
	return out
}

var cardsTmpl = template.Must(template.New("cards").Parse(`
{{- range . -}}
<a class="product-card" href="{{.Href}}" data-product="{{.Payload}}">
  <div class="product-card__img"><img src="{{.Img}}" alt="{{.Title}}"></div>
  <div class="product-card__title">{{.Title}}</div>
  {{- with .Excerpt}}
  <p class="product-card__excerpt">{{.}}</p>
  {{- end}}
  <button class="product-card__price" type="button" data-add-to-cart>{{.PriceLabel}}</button>
</a>
{{end -}}
`))

// RenderCards writes the HTML fragment for the cards.
func RenderCards(w io.Writer, cards []Card) error {
	return cardsTmpl.Execute(w, cards)
}
