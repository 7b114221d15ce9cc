package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BloomStore/internal/cart"
	"BloomStore/internal/session"
	"BloomStore/internal/storage"
	"BloomStore/pkg/kit"
)

func newCheckoutTS(t *testing.T) (*httptest.Server, *cart.Store) {
	t.Helper()

	svc, c := newService(t, storage.NewMemStore())
	s := &Server{Service: svc}

	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(session.RequireHeader)
		pr.Post("/checkout", s.SubmitHandler())
		pr.Get("/success", s.SuccessHandler())
	})

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, c
}

var noRedirect = &http.Client{
	CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
}

func post(t *testing.T, u, ct, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, u, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set(session.Header, "s1")
	req.Header.Set("Content-Type", ct)

	resp, err := noRedirect.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHTTP_CheckoutEmptyCart(t *testing.T) {
	ts, _ := newCheckoutTS(t)

	resp := post(t, ts.URL+"/checkout", "application/json", `{}`)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var er kit.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&er))
	assert.Equal(t, "cart is empty", er.Error)
	assert.Equal(t, msgEmptyCart, er.Message)
}

func TestHTTP_CheckoutJSON(t *testing.T) {
	ts, c := newCheckoutTS(t)
	_, err := c.Add(context.Background(), "s1", cart.ItemInput{ID: "a", Price: num(500)}, 2)
	require.NoError(t, err)

	resp := post(t, ts.URL+"/checkout", "application/json",
		`{"pay":"cash","recipient_name":"Anna","delivery_date":"2026-03-08"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out submitResp
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "RABC-000001", out.OrderID)
	assert.Equal(t, 1000.0, out.Total)
	assert.Equal(t, "cash", out.Order.PayMethod)
	assert.Equal(t, "2026-03-08", out.Order.Schedule.Date)
	assert.Equal(t, "/success.html?order=RABC-000001", out.Redirect)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/success?order="+out.OrderID, nil)
	require.NoError(t, err)
	req.Header.Set(session.Header, "s1")
	got, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer got.Body.Close()
	require.Equal(t, http.StatusOK, got.StatusCode)

	var o Order
	require.NoError(t, json.NewDecoder(got.Body).Decode(&o))
	assert.Equal(t, "Anna", o.Recipient.Name)
}

func TestHTTP_CheckoutForm(t *testing.T) {
	ts, c := newCheckoutTS(t)
	_, err := c.Add(context.Background(), "s1", cart.ItemInput{ID: "a", Price: num(700)}, 1)
	require.NoError(t, err)

	form := url.Values{"customer_name": {"Ivan"}, "delivery": {"pickup"}}
	resp := post(t, ts.URL+"/checkout", "application/x-www-form-urlencoded", form.Encode())

	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/success.html?order=RABC-000001", resp.Header.Get("Location"))
	assert.Zero(t, c.Count(context.Background(), "s1"))
}

func TestHTTP_CheckoutRequiresSession(t *testing.T) {
	ts, _ := newCheckoutTS(t)

	resp, err := http.Post(ts.URL+"/checkout", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHTTP_SuccessUnknownOrder(t *testing.T) {
	ts, _ := newCheckoutTS(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/success?order=RXXX-000000", nil)
	require.NoError(t, err)
	req.Header.Set(session.Header, "s1")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
