// Package cart keeps each visitor's cart as one JSON array under the "cart"
// key of the session's storage namespace.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"go.uber.org/zap"

	"BloomStore/internal/storage"
)

const Key = "cart"

// MaxQty bounds a single line's quantity, so stored carts always read back
// as written.
const MaxQty = math.MaxInt32

var (
	ErrMissingID   = errors.New("item id required")
	ErrPersistCart = errors.New("cart write failed")
)

type Store struct {
	kv  storage.Store
	log *zap.Logger

	// serializes read-modify-write cycles
	mu sync.Mutex

	subsMu  sync.RWMutex
	subs    map[int]Listener
	nextSub int
}

func NewStore(kv storage.Store, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		kv:   kv,
		log:  log,
		subs: map[int]Listener{},
	}
}

// Items returns the session's cart. Storage failures and corrupt data read
// as an empty cart.
func (s *Store) Items(ctx context.Context, session string) []LineItem {
	raw, ok, err := s.kv.Get(ctx, session, Key)
	if err != nil {
		s.log.Debug("cart read failed, using empty cart",
			zap.String("session", session), zap.Error(err))
		return []LineItem{}
	}
	if !ok {
		return []LineItem{}
	}
	return decodeItems(raw)
}

// Line returns the cart line with the given id.
func (s *Store) Line(ctx context.Context, session, id string) (LineItem, bool) {
	for _, li := range s.Items(ctx, session) {
		if li.ID == id {
			return li, true
		}
	}
	return LineItem{}, false
}

// Count is the sum of all quantities.
func (s *Store) Count(ctx context.Context, session string) int {
	return countOf(s.Items(ctx, session))
}

// Add puts qty units of the item into the cart and returns the new total
// count. Re-adding an id bumps its quantity and overwrites the fields the
// input supplies.
func (s *Store) Add(ctx context.Context, session string, in ItemInput, qty int) (int, error) {
	in.ID = strings.TrimSpace(in.ID)
	if in.ID == "" {
		return 0, ErrMissingID
	}
	qty = clampQty(qty)

	s.mu.Lock()
	items := s.Items(ctx, session)

	found := false
	for i := range items {
		if items[i].ID == in.ID {
			in.mergeInto(&items[i], qty)
			found = true
			break
		}
	}
	if !found {
		items = append(items, in.newLine(qty))
	}

	err := s.save(ctx, session, items)
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}

	count := countOf(items)
	s.publish(Event{Session: session, Op: OpAdd, Count: count})
	return count, nil
}

// Remove drops the line with the given id. A missing id changes nothing.
func (s *Store) Remove(ctx context.Context, session, id string) error {
	s.mu.Lock()
	items := s.Items(ctx, session)

	kept := items[:0]
	for _, li := range items {
		if li.ID != id {
			kept = append(kept, li)
		}
	}
	if len(kept) == len(items) {
		s.mu.Unlock()
		return nil
	}

	err := s.save(ctx, session, kept)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publish(Event{Session: session, Op: OpRemove, Count: countOf(kept)})
	return nil
}

// ChangeQty moves one line's quantity by delta, staying within [1, MaxQty].
func (s *Store) ChangeQty(ctx context.Context, session, id string, delta int) error {
	s.mu.Lock()
	items := s.Items(ctx, session)

	idx := -1
	for i := range items {
		if items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	items[idx].Qty = addQty(items[idx].Qty, delta)

	err := s.save(ctx, session, items)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publish(Event{Session: session, Op: OpQty, Count: countOf(items)})
	return nil
}

// Clear resets the cart to an empty array.
func (s *Store) Clear(ctx context.Context, session string) error {
	s.mu.Lock()
	err := s.save(ctx, session, []LineItem{})
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publish(Event{Session: session, Op: OpClear, Count: 0})
	return nil
}

func (s *Store) save(ctx context.Context, session string, items []LineItem) error {
	if items == nil {
		items = []LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistCart, err)
	}
	if err := s.kv.Set(ctx, session, Key, raw); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistCart, err)
	}
	return nil
}
