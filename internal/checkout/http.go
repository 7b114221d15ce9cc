package checkout

import (
	"errors"
	"mime"
	"net/http"

	"go.uber.org/zap"

	"BloomStore/internal/session"
	"BloomStore/pkg/kit"
)

const (
	msgEmptyCart   = "Your cart is empty. Add some flowers first."
	msgSubmitRetry = "We could not send your order. Please try again."
)

type Server struct {
	Service *Service
	Log     *zap.Logger
}

// SubmitHandler and SuccessHandler expect to run behind session.RequireHeader.
func (s *Server) SubmitHandler() http.HandlerFunc { return s.submit }

func (s *Server) SuccessHandler() http.HandlerFunc { return s.success }

type submitResp struct {
	OrderID  string  `json:"order_id"`
	Total    float64 `json:"total"`
	Redirect string  `json:"redirect"`
	Order    Order   `json:"order"`
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	sid, _ := session.IDFromContext(r.Context())

	form, htmlForm, err := decodeForm(w, r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad form", map[string]any{"cause": err.Error()})
		return
	}

	res, err := s.Service.Submit(r.Context(), sid, form)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if htmlForm {
		http.Redirect(w, r, res.Redirect, http.StatusSeeOther)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, submitResp{
		OrderID:  res.Order.ID,
		Total:    res.Order.Total,
		Redirect: res.Redirect,
		Order:    res.Order,
	})
}

func (s *Server) success(w http.ResponseWriter, r *http.Request) {
	sid, _ := session.IDFromContext(r.Context())
	id := r.URL.Query().Get("order")

	o, err := s.Service.LastOrder(r.Context(), sid, id)
	if err != nil {
		kit.WriteError(w, r, http.StatusNotFound, "order not found", map[string]any{"order": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, o)
}

// decodeForm accepts both a JSON body and a classic HTML form post.
func decodeForm(w http.ResponseWriter, r *http.Request) (Form, bool, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, kit.MaxBodyBytes)
		if err := r.ParseMultipartForm(kit.MaxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return Form{}, true, err
		}
		return FormFromValues(r.PostForm), true, nil
	}

	var f Form
	if r.ContentLength == 0 {
		return f, false, nil
	}
	if err := kit.DecodeJSON(w, r, &f); err != nil {
		return Form{}, false, err
	}
	return f, false, nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrEmptyCart):
		kit.WriteUserError(w, r, http.StatusConflict, "cart is empty", msgEmptyCart)
	case errors.Is(err, ErrSubmitFailed):
		kit.WriteUserError(w, r, http.StatusServiceUnavailable, "order submission failed", msgSubmitRetry)
	default:
		if s.Log != nil {
			s.Log.Error("checkout failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
