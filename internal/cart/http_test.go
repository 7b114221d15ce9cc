package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BloomStore/internal/session"
	"BloomStore/internal/storage"
)

type fakeCatalog map[string]CatalogProduct

func (f fakeCatalog) GetProduct(_ context.Context, id string) (CatalogProduct, error) {
	p, ok := f[id]
	if !ok {
		return CatalogProduct{}, ErrCatalogNotFound
	}
	return p, nil
}

func newCartTS(t *testing.T, lookup ProductLookup) *httptest.Server {
	t.Helper()

	s := &Server{Store: NewStore(storage.NewMemStore(), nil), Catalog: lookup}

	r := chi.NewRouter()
	r.With(session.RequireHeader).Mount("/cart", s.Routes())

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func call(t *testing.T, method, url, body string) (int, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set(session.Header, "s_http")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw json.RawMessage
	_ = json.NewDecoder(resp.Body).Decode(&raw)
	return resp.StatusCode, raw
}

func TestHTTP_AddChangeRemove(t *testing.T) {
	ts := newCartTS(t, nil)

	code, raw := call(t, http.MethodPost, ts.URL+"/cart/items",
		`{"id":"rose-15","title":"15 roses","price":"4 500 ₽","img":"r.jpg","href":"/p?sku=rose-15"}`)
	require.Equal(t, http.StatusOK, code, string(raw))
	assert.JSONEq(t, `{"count":1}`, string(raw))

	code, raw = call(t, http.MethodPost, ts.URL+"/cart/items", `{"id":"rose-15","qty":2}`)
	require.Equal(t, http.StatusOK, code, string(raw))
	assert.JSONEq(t, `{"count":3}`, string(raw))

	code, raw = call(t, http.MethodPatch, ts.URL+"/cart/items/rose-15", `{"delta":-100}`)
	require.Equal(t, http.StatusOK, code, string(raw))

	var sum Summary
	require.NoError(t, json.Unmarshal(raw, &sum))
	require.Len(t, sum.Items, 1)
	assert.Equal(t, 1, sum.Items[0].Qty)
	assert.Equal(t, 4500.0, sum.Total)

	code, raw = call(t, http.MethodDelete, ts.URL+"/cart/items/rose-15", "")
	require.Equal(t, http.StatusOK, code, string(raw))
	require.NoError(t, json.Unmarshal(raw, &sum))
	assert.Empty(t, sum.Items)

	code, raw = call(t, http.MethodGet, ts.URL+"/cart/count", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"count":0}`, string(raw))
}

func TestHTTP_AddByIDFillsFromCatalog(t *testing.T) {
	ts := newCartTS(t, fakeCatalog{
		"tulips": {ID: "tulips", Title: "Tulips", Price: 2100, Img: "t.jpg"},
	})

	code, raw := call(t, http.MethodPost, ts.URL+"/cart/items", `{"id":"tulips"}`)
	require.Equal(t, http.StatusOK, code, string(raw))

	code, raw = call(t, http.MethodGet, ts.URL+"/cart", "")
	require.Equal(t, http.StatusOK, code)

	var sum Summary
	require.NoError(t, json.Unmarshal(raw, &sum))
	require.Len(t, sum.Items, 1)
	assert.Equal(t, "Tulips", sum.Items[0].Title)
	assert.Equal(t, 2100.0, sum.Items[0].Price)

	code, _ = call(t, http.MethodPost, ts.URL+"/cart/items", `{"id":"orchid"}`)
	assert.Equal(t, http.StatusNotFound, code)
}

type downCatalog struct{}

func (downCatalog) GetProduct(context.Context, string) (CatalogProduct, error) {
	return CatalogProduct{}, ErrCatalogUnavailable
}

func TestHTTP_ReAddByIDSkipsCatalogForCartLines(t *testing.T) {
	for name, lookup := range map[string]ProductLookup{
		"unknown to catalog": fakeCatalog{},
		"catalog down":       downCatalog{},
	} {
		t.Run(name, func(t *testing.T) {
			ts := newCartTS(t, lookup)

			code, raw := call(t, http.MethodPost, ts.URL+"/cart/items",
				`{"id":"florist-cGFzdGVs","title":"Bouquet","price":1500,"qty":2}`)
			require.Equal(t, http.StatusOK, code, string(raw))

			code, raw = call(t, http.MethodPost, ts.URL+"/cart/items", `{"id":"florist-cGFzdGVs","qty":3}`)
			require.Equal(t, http.StatusOK, code, string(raw))
			assert.JSONEq(t, `{"count":5}`, string(raw))

			code, raw = call(t, http.MethodGet, ts.URL+"/cart", "")
			require.Equal(t, http.StatusOK, code)
			var sum Summary
			require.NoError(t, json.Unmarshal(raw, &sum))
			require.Len(t, sum.Items, 1)
			assert.Equal(t, "Bouquet", sum.Items[0].Title)
			assert.Equal(t, 1500.0, sum.Items[0].Price)
		})
	}
}

func TestHTTP_HugeQtySaturates(t *testing.T) {
	ts := newCartTS(t, nil)

	code, raw := call(t, http.MethodPost, ts.URL+"/cart/items", `{"id":"a","title":"A","price":1,"qty":2}`)
	require.Equal(t, http.StatusOK, code, string(raw))

	code, raw = call(t, http.MethodPost, ts.URL+"/cart/items", `{"id":"a","qty":9223372036854775807}`)
	require.Equal(t, http.StatusOK, code, string(raw))
	assert.JSONEq(t, `{"count":2147483647}`, string(raw))

	code, raw = call(t, http.MethodGet, ts.URL+"/cart/count", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"count":2147483647}`, string(raw))
}

func TestHTTP_BadRequests(t *testing.T) {
	ts := newCartTS(t, nil)

	code, _ := call(t, http.MethodPost, ts.URL+"/cart/items", `{"title":"no id"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, http.MethodPost, ts.URL+"/cart/items", `{"id":"a","color":"red"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, http.MethodPatch, ts.URL+"/cart/items/a", `{"delta":1}{}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHTTP_RequiresSession(t *testing.T) {
	ts := newCartTS(t, nil)

	resp, err := http.Get(ts.URL + "/cart")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
