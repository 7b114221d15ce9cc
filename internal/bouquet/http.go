package bouquet

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"BloomStore/internal/cart"
	"BloomStore/internal/session"
	"BloomStore/pkg/kit"
)

type Handler struct {
	Cart *cart.Store
	Log  *zap.Logger
}

type addResp struct {
	Count int     `json:"count"`
	Item  Bouquet `json:"item"`
}

// ServeHTTP adds exactly one bouquet per request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sid, _ := session.IDFromContext(r.Context())

	var o Options
	if err := kit.DecodeJSON(w, r, &o); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	b := Build(o)
	n, err := h.Cart.Add(r.Context(), sid, b.Input(), 1)
	if err != nil {
		if errors.Is(err, cart.ErrPersistCart) {
			kit.WriteError(w, r, http.StatusServiceUnavailable, "cart unavailable", nil)
			return
		}
		if h.Log != nil {
			h.Log.Error("add bouquet failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, addResp{Count: n, Item: b})
}
