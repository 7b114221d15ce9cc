package gateway_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"BloomStore/internal/cart"
	"BloomStore/internal/catalog"
	"BloomStore/internal/checkout"
	"BloomStore/internal/gateway"
	"BloomStore/internal/session"
	"BloomStore/internal/shop"
	"BloomStore/internal/storage"
)

const sessionSecret = "test-secret-test-secret-test-secret"

func newCatalogTS(t *testing.T) *httptest.Server {
	t.Helper()

	s := &catalog.Server{Store: catalog.NewSeededStore()}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "catalog",
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func newCartTS(t *testing.T, catalogURL string) *httptest.Server {
	t.Helper()

	kv := storage.NewMemStore()
	c := cart.NewStore(kv, nil)
	svc := checkout.NewService(c, kv, nil)
	svc.Delay = 0

	h := shop.NewHandler(shop.Deps{
		KV:       kv,
		Cart:     c,
		Checkout: svc,
		Catalog:  cart.NewCatalogClient(catalogURL),
	}, shop.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "cart",
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func newGatewayTS(t *testing.T, catalogURL, cartURL string, checkoutLimit int) *httptest.Server {
	t.Helper()

	h, err := gateway.NewHandler(
		gateway.Deps{
			CatalogURL:     catalogURL,
			CartURL:        cartURL,
			SessionSecret:  sessionSecret,
			SessionTTL:     time.Hour,
			CheckoutLimit:  checkoutLimit,
			CheckoutWindow: time.Minute,
		},
		gateway.HTTPDeps{
			Log:     zap.NewNop(),
			Service: "gateway",
		},
	)
	require.NoError(t, err)

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func newBrowser(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func doJSON(t *testing.T, c *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func TestGateway_PublicAPI_HappyPath(t *testing.T) {
	catalogTS := newCatalogTS(t)
	cartTS := newCartTS(t, catalogTS.URL)
	gwTS := newGatewayTS(t, catalogTS.URL, cartTS.URL, 10)

	c := newBrowser(t)

	resp, raw := doJSON(t, c, http.MethodGet, gwTS.URL+"/products", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var products []catalog.Product
	require.NoError(t, json.Unmarshal(raw, &products))
	require.NotEmpty(t, products)
	first := products[0]

	resp, raw = doJSON(t, c, http.MethodGet, gwTS.URL+"/cards", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "data-product")

	// id only: the cart fills the line from the catalog
	resp, raw = doJSON(t, c, http.MethodPost, gwTS.URL+"/cart/items", map[string]any{"id": first.ID, "qty": 2}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.JSONEq(t, `{"count":2}`, string(raw))

	resp, raw = doJSON(t, c, http.MethodGet, gwTS.URL+"/cart", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sum cart.Summary
	require.NoError(t, json.Unmarshal(raw, &sum))
	require.Len(t, sum.Items, 1)
	assert.Equal(t, first.Title, sum.Items[0].Title)
	assert.Equal(t, first.Price*2, sum.Total)

	form := url.Values{"recipient_name": {"Anna"}, "city": {"Moscow"}}
	req, err := http.NewRequest(http.MethodPost, gwTS.URL+"/checkout", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err = c.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/success.html", loc.Path)
	orderID := loc.Query().Get("order")
	require.NotEmpty(t, orderID)

	resp, raw = doJSON(t, c, http.MethodGet, gwTS.URL+"/success?order="+orderID, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var o checkout.Order
	require.NoError(t, json.Unmarshal(raw, &o))
	assert.Equal(t, "Anna", o.Recipient.Name)

	resp, raw = doJSON(t, c, http.MethodGet, gwTS.URL+"/cart/count", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"count":0}`, string(raw))
}

func TestGateway_SessionsAreIsolated(t *testing.T) {
	catalogTS := newCatalogTS(t)
	cartTS := newCartTS(t, catalogTS.URL)
	gwTS := newGatewayTS(t, catalogTS.URL, cartTS.URL, 10)

	alice, bob := newBrowser(t), newBrowser(t)

	resp, _ := doJSON(t, alice, http.MethodPost, gwTS.URL+"/cart/items", map[string]any{"id": "x", "title": "X", "price": 100}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sid *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == session.CookieName {
			sid = ck
		}
	}
	require.NotNil(t, sid, "first visit sets the session cookie")
	assert.True(t, sid.HttpOnly)

	_, raw := doJSON(t, bob, http.MethodGet, gwTS.URL+"/cart/count", nil, nil)
	assert.JSONEq(t, `{"count":0}`, string(raw))

	// a forged header cannot reach someone else's cart
	alicesID := "s_forged"
	_, raw = doJSON(t, bob, http.MethodGet, gwTS.URL+"/cart/count", nil, map[string]string{session.Header: alicesID})
	assert.JSONEq(t, `{"count":0}`, string(raw))

	_, raw = doJSON(t, alice, http.MethodGet, gwTS.URL+"/cart/count", nil, nil)
	assert.JSONEq(t, `{"count":1}`, string(raw))
}

func TestGateway_CheckoutEmptyAndRateLimited(t *testing.T) {
	catalogTS := newCatalogTS(t)
	cartTS := newCartTS(t, catalogTS.URL)
	gwTS := newGatewayTS(t, catalogTS.URL, cartTS.URL, 2)

	c := newBrowser(t)

	for range 2 {
		resp, raw := doJSON(t, c, http.MethodPost, gwTS.URL+"/checkout", map[string]any{}, nil)
		require.Equal(t, http.StatusConflict, resp.StatusCode, string(raw))
	}

	resp, _ := doJSON(t, c, http.MethodPost, gwTS.URL+"/checkout", map[string]any{}, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

func TestGateway_Readyz(t *testing.T) {
	catalogTS := newCatalogTS(t)
	cartTS := newCartTS(t, catalogTS.URL)

	gwTS := newGatewayTS(t, catalogTS.URL, cartTS.URL, 10)
	resp, _ := doJSON(t, http.DefaultClient, http.MethodGet, gwTS.URL+"/readyz", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()

	gwTS = newGatewayTS(t, catalogTS.URL, dead.URL, 10)
	resp, raw := doJSON(t, http.DefaultClient, http.MethodGet, gwTS.URL+"/readyz", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(raw), "cart")

	resp, _ = doJSON(t, newBrowser(t), http.MethodGet, gwTS.URL+"/cart", nil, nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestGateway_RejectsBadUpstream(t *testing.T) {
	_, err := gateway.NewHandler(gateway.Deps{CatalogURL: "catalog:8082", CartURL: "http://cart"}, gateway.HTTPDeps{})
	assert.ErrorIs(t, err, gateway.ErrBadUpstream)
}
