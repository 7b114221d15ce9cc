// Package catalog serves the static florist product list and renders it as
// product cards.
package catalog

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("product not found")

type Product struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Price   float64 `json:"price"`
	Img     string  `json:"img"`
	Excerpt string  `json:"excerpt,omitempty"`
	Href    string  `json:"href,omitempty"`
}

type Store interface {
	Ping(ctx context.Context) error
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, bool, error)
}
