package cart

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"BloomStore/internal/money"
	"BloomStore/internal/session"
	"BloomStore/pkg/kit"
)

type Server struct {
	Store   *Store
	Catalog ProductLookup
	Log     *zap.Logger
}

// Routes expects to be mounted under /cart behind session.RequireHeader.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.summary)
	r.Get("/count", s.count)
	r.Post("/items", s.add)
	r.Patch("/items/{id}", s.changeQty)
	r.Delete("/items/{id}", s.remove)

	return r
}

// addReq mirrors the data-product payload product cards carry.
type addReq struct {
	ID      any     `json:"id"`
	Title   *string `json:"title"`
	Price   any     `json:"price"`
	Img     *string `json:"img"`
	Excerpt *string `json:"excerpt"`
	Href    string  `json:"href"`
	Qty     *int    `json:"qty"`
}

type countResp struct {
	Count int `json:"count"`
}

type qtyReq struct {
	Delta int `json:"delta"`
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	sid, _ := session.IDFromContext(r.Context())
	kit.WriteJSON(w, http.StatusOK, s.Store.Summary(r.Context(), sid))
}

func (s *Server) count(w http.ResponseWriter, r *http.Request) {
	sid, _ := session.IDFromContext(r.Context())
	kit.WriteJSON(w, http.StatusOK, countResp{Count: s.Store.Count(r.Context(), sid)})
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	sid, _ := session.IDFromContext(r.Context())

	var req addReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	in := ItemInput{
		ID:      coerceString(req.ID),
		Title:   req.Title,
		Img:     req.Img,
		Excerpt: req.Excerpt,
	}
	if req.Price != nil {
		p := money.Parse(req.Price)
		in.Price = &p
	}

	// an id already in the cart only needs its quantity bumped
	if s.needsCatalog(r, sid, in) {
		filled, err := s.fromCatalog(r, in.ID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		in = filled
	}

	qty := 1
	if req.Qty != nil {
		qty = *req.Qty
	}

	count, err := s.Store.Add(r.Context(), sid, in, qty)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, countResp{Count: count})
}

func (s *Server) needsCatalog(r *http.Request, sid string, in ItemInput) bool {
	if in.ID == "" || in.Title != nil || in.Price != nil || s.Catalog == nil {
		return false
	}
	_, inCart := s.Store.Line(r.Context(), sid, in.ID)
	return !inCart
}

func (s *Server) fromCatalog(r *http.Request, id string) (ItemInput, error) {
	p, err := s.Catalog.GetProduct(r.Context(), id)
	if err != nil {
		return ItemInput{}, err
	}
	return ItemInput{
		ID:      id,
		Title:   &p.Title,
		Price:   &p.Price,
		Img:     &p.Img,
		Excerpt: &p.Excerpt,
	}, nil
}

func (s *Server) changeQty(w http.ResponseWriter, r *http.Request) {
	sid, _ := session.IDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req qtyReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	if err := s.Store.ChangeQty(r.Context(), sid, id, req.Delta); err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.Store.Summary(r.Context(), sid))
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	sid, _ := session.IDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.Store.Remove(r.Context(), sid, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.Store.Summary(r.Context(), sid))
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrMissingID):
		kit.WriteError(w, r, http.StatusBadRequest, "item id required", nil)
	case errors.Is(err, ErrCatalogNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "unknown product", nil)
	case errors.Is(err, ErrCatalogUnavailable):
		kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog unavailable", nil)
	case errors.Is(err, ErrCatalogBadStatus):
		kit.WriteError(w, r, http.StatusBadGateway, "catalog error", nil)
	case errors.Is(err, ErrPersistCart):
		if s.Log != nil {
			s.Log.Error("cart write failed", zap.Error(err))
		}
		kit.WriteUserError(w, r, http.StatusServiceUnavailable, "storage unavailable", "Could not update your cart. Please try again.")
	default:
		if s.Log != nil {
			s.Log.Error("cart request failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
