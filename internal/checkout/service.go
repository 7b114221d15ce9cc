package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/url"
	"time"

	"go.uber.org/zap"

	"BloomStore/internal/cart"
	"BloomStore/internal/money"
	"BloomStore/internal/storage"
)

const (
	LastOrderKey = "last_order"

	DefaultDelay       = 1200 * time.Millisecond
	DefaultSuccessPath = "/success.html"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrSubmitFailed  = errors.New("order submission failed")
	ErrOrderNotFound = errors.New("order not found")
)

type Service struct {
	Cart *cart.Store
	KV   storage.Store
	Log  *zap.Logger

	// Delay imitates the round trip to an order backend.
	Delay       time.Duration
	SuccessPath string

	NewID func(time.Time) string
	Now   func() time.Time

	// Fail, when set, runs after the delay; an error aborts the submission.
	Fail func(ctx context.Context) error

	Metrics *Metrics
}

func NewService(c *cart.Store, kv storage.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		Cart:        c,
		KV:          kv,
		Log:         log,
		Delay:       DefaultDelay,
		SuccessPath: DefaultSuccessPath,
		NewID:       NewOrderID,
		Now:         time.Now,
	}
}

var errSimulated = errors.New("simulated backend failure")

// RandomFailure returns a Fail hook that rejects roughly rate of all
// submissions. A rate of zero disables the hook.
func RandomFailure(rate float64) func(context.Context) error {
	if rate <= 0 {
		return nil
	}
	return func(context.Context) error {
		if rand.Float64() < rate {
			return errSimulated
		}
		return nil
	}
}

type Result struct {
	Order    Order  `json:"order"`
	Redirect string `json:"redirect"`
}

// Submit turns the session's cart into an order. On any failure the cart
// and the previous last order stay as they were, so the visitor can retry.
func (s *Service) Submit(ctx context.Context, session string, f Form) (Result, error) {
	items := s.Cart.Items(ctx, session)
	if len(items) == 0 {
		s.Metrics.observe(outcomeEmpty)
		return Result{}, ErrEmptyCart
	}

	order := s.buildOrder(items, f.normalized())

	if err := s.wait(ctx); err != nil {
		s.Metrics.observe(outcomeFailed)
		return Result{}, fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}
	if s.Fail != nil {
		if err := s.Fail(ctx); err != nil {
			s.Log.Warn("simulated checkout failure", zap.String("session", session), zap.Error(err))
			s.Metrics.observe(outcomeFailed)
			return Result{}, fmt.Errorf("%w: %v", ErrSubmitFailed, err)
		}
	}

	raw, err := json.Marshal(order)
	if err != nil {
		s.Metrics.observe(outcomeFailed)
		return Result{}, fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}
	if err := s.KV.Set(ctx, session, LastOrderKey, raw); err != nil {
		s.Metrics.observe(outcomeFailed)
		return Result{}, fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}

	// the order is recorded; a cart that fails to clear only costs a stale badge
	if err := s.Cart.Clear(ctx, session); err != nil {
		s.Log.Warn("clear cart after checkout failed", zap.String("session", session), zap.Error(err))
	}

	s.Metrics.observe(outcomeOK)
	s.Log.Info("order submitted",
		zap.String("order_id", order.ID),
		zap.Int("lines", len(order.Items)),
		zap.Float64("total", order.Total),
	)

	return Result{
		Order:    order,
		Redirect: s.SuccessPath + "?" + url.Values{"order": {order.ID}}.Encode(),
	}, nil
}

// LastOrder returns the stored order if its id matches. An empty id matches
// whatever is stored.
func (s *Service) LastOrder(ctx context.Context, session, id string) (Order, error) {
	raw, ok, err := s.KV.Get(ctx, session, LastOrderKey)
	if err != nil || !ok {
		return Order{}, ErrOrderNotFound
	}

	var o Order
	if err := json.Unmarshal(raw, &o); err != nil {
		s.Log.Debug("stored order unreadable", zap.String("session", session), zap.Error(err))
		return Order{}, ErrOrderNotFound
	}
	if id != "" && o.ID != id {
		return Order{}, ErrOrderNotFound
	}
	return o, nil
}

func (s *Service) buildOrder(items []cart.LineItem, f Form) Order {
	now := s.Now().UTC()

	lines := make([]OrderItem, 0, len(items))
	totals := make([]float64, 0, len(items))
	for _, li := range items {
		lines = append(lines, OrderItem{
			ID:    li.ID,
			Title: li.Title,
			Price: li.Price,
			Img:   li.Img,
			Qty:   li.Qty,
		})
		totals = append(totals, money.LineTotal(li.Price, li.Qty))
	}

	return Order{
		ID:           s.NewID(now),
		CreatedAt:    now,
		PayMethod:    f.PayMethod,
		DeliveryType: f.DeliveryType,
		Recipient:    Person{Name: f.RecipientName, Phone: f.RecipientPhone},
		Customer:     Person{Name: f.CustomerName, Phone: f.CustomerPhone},
		Schedule:     Schedule{Date: f.Date, Time: f.Time, City: f.City, Address: f.Address},
		Items:        lines,
		Total:        money.Sum(totals...),
	}
}

func (s *Service) wait(ctx context.Context) error {
	if s.Delay <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(s.Delay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
