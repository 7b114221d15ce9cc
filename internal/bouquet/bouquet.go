// Package bouquet builds the "florist's choice" line item from the custom
// bouquet form.
package bouquet

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"

	"BloomStore/internal/cart"
	"BloomStore/internal/money"
)

const (
	PriceStep = 500
	MinPrice  = 1500
	MaxPrice  = 200000

	Title = "Florist's choice bouquet"
	Img   = "assets/images/izobr/cert-1-1.jpg"
	Href  = "/custom.html"

	idPrefix = "florist-"
	idKeyLen = 12
)

type Options struct {
	Palette string `json:"palette"`
	Wrap    string `json:"wrap"`
	For     string `json:"for"`
	Note    string `json:"note"`
	// Price accepts numbers and display strings like "3 000 ₽".
	Price any `json:"price"`
}

type Bouquet struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Price   float64 `json:"price"`
	Img     string  `json:"img"`
	Href    string  `json:"href"`
	Excerpt string  `json:"excerpt"`
}

// ClampPrice rounds to the nearest step and keeps the result in range.
// Zero or unparseable input yields MinPrice.
func ClampPrice(v any) int {
	p := math.Round(money.Parse(v))
	if p <= 0 {
		p = MinPrice
	}

	n := int(math.Round(p/PriceStep)) * PriceStep
	return min(max(n, MinPrice), MaxPrice)
}

// Build derives a stable id from the options and the price, so different
// compositions stay separate lines in the cart.
func Build(o Options) Bouquet {
	palette := strings.TrimSpace(o.Palette)
	wrap := strings.TrimSpace(o.Wrap)
	forWho := strings.TrimSpace(o.For)
	note := strings.TrimSpace(o.Note)
	price := ClampPrice(o.Price)

	return Bouquet{
		ID:      ID(palette, wrap, forWho, price),
		Title:   Title,
		Price:   float64(price),
		Img:     Img,
		Href:    Href,
		Excerpt: excerpt(palette, wrap, forWho, note),
	}
}

func ID(palette, wrap, forWho string, price int) string {
	key := strings.Join([]string{palette, wrap, forWho, strconv.Itoa(price)}, "|")
	enc := base64.RawStdEncoding.EncodeToString([]byte(key))
	if len(enc) > idKeyLen {
		enc = enc[:idKeyLen]
	}
	return idPrefix + enc
}

func excerpt(palette, wrap, forWho, note string) string {
	s := "Palette: " + palette + "; Wrap: " + wrap + "; For: " + forWho
	if note != "" {
		s += ". Wishes: " + note
	}
	return s
}

func (b Bouquet) Input() cart.ItemInput {
	return cart.ItemInput{
		ID:      b.ID,
		Title:   &b.Title,
		Price:   &b.Price,
		Img:     &b.Img,
		Excerpt: &b.Excerpt,
	}
}
