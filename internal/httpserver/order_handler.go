package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"printdesk-be/internal/order"
	"printdesk-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

const maxAttachmentBytes = 10 << 20

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// actorFrom resolves the acting user from the request context.
func actorFrom(r *http.Request) (order.Actor, bool) {
	id, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		return order.Actor{}, false
	}
	return order.Actor{
		ID:    id,
		Name:  utils.GetUserNameFromContext(r.Context()),
		Email: utils.GetUserEmailFromContext(r.Context()),
		Role:  order.Role(utils.GetUserRoleFromContext(r.Context())),
	}, true
}

// writeError maps the domain error taxonomy onto HTTP codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrSubOrderNotFound),
		errors.Is(err, order.ErrUpdateNotFound):
		utils.WriteJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, order.ErrForbidden):
		utils.WriteJSONError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrRedundantStatus),
		errors.Is(err, order.ErrSubOrdersIncomplete),
		errors.Is(err, order.ErrAlreadyConfirmed),
		errors.Is(err, order.ErrNotAwaitingConfirmation),
		errors.Is(err, order.ErrEmptyUpdate),
		errors.Is(err, order.ErrNoItems),
		errors.Is(err, order.ErrBadQuantity):
		utils.WriteJSONError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		utils.WriteJSONError(w, "internal error", http.StatusInternalServerError)
	}
}

type createOrderRequest struct {
	DisplayName *string               `json:"display_name"`
	Client      order.ClientInfo      `json:"client"`
	Items       []order.SubOrderInput `json:"items"`
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	o, err := s.orders.CreateOrder(r.Context(), actor, order.CreateOrderInput{
		DisplayName: req.DisplayName,
		Client:      req.Client,
		SubOrders:   req.Items,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	views, err := s.orders.ListOrderViews(r.Context(), actor, listQueryFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

// listQueryFrom reads the list transform parameters off the query string.
func listQueryFrom(r *http.Request) order.ListQuery {
	q := order.ListQuery{
		Tab:    order.Tab(r.URL.Query().Get("tab")),
		Sort:   order.SortKey(r.URL.Query().Get("sort")),
		Search: r.URL.Query().Get("search"),
	}
	if q.Tab == "" {
		q.Tab = order.TabCurrent
	}
	if status := r.URL.Query().Get("status"); status != "" {
		st := order.OrderStatus(status)
		q.Status = &st
	}
	if product := r.URL.Query().Get("product"); product != "" {
		q.Product = &product
	}
	return q
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	view, err := s.orders.GetOrderView(r.Context(), actor, chi.URLParam(r, "orderID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

type transitionRequest struct {
	Status string `json:"status"`
}

func (s *Server) transitionOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	err := s.orders.TransitionOrderStatus(r.Context(), actor, chi.URLParam(r, "orderID"), order.OrderStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

func (s *Server) transitionSubOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	err := s.orders.TransitionSubOrderStatus(r.Context(), actor,
		chi.URLParam(r, "orderID"), chi.URLParam(r, "subOrderID"), order.SubOrderStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

func (s *Server) confirmOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := s.orders.ConfirmOrder(r.Context(), actor, chi.URLParam(r, "orderID")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"confirmed": true})
}

type appendUpdateRequest struct {
	Text       string            `json:"text"`
	Attachment *order.Attachment `json:"attachment"`
}

func (s *Server) appendUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req appendUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	u, err := s.orders.AppendUpdate(r.Context(), actor, chi.URLParam(r, "orderID"), req.Text, req.Attachment)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) listUpdates(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	updates, err := s.orders.ListUpdates(r.Context(), actor, chi.URLParam(r, "orderID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updates)
}

func (s *Server) deleteUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	err := s.orders.DeleteUpdate(r.Context(), actor, chi.URLParam(r, "orderID"), chi.URLParam(r, "updateID"))
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := s.orders.DeleteOrder(r.Context(), actor, chi.URLParam(r, "orderID")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// uploadAttachment stores a design file or update attachment and returns
// the reference the client then embeds in an update.
func (s *Server) uploadAttachment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxAttachmentBytes); err != nil {
		utils.WriteJSONError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.WriteJSONError(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAttachmentBytes))
	if err != nil {
		utils.WriteJSONError(w, "failed to read file", http.StatusBadRequest)
		return
	}

	a, err := s.assets.Upload(data, chi.URLParam(r, "orderID"), actor.ID, header.Filename)
	if err != nil {
		utils.WriteJSONError(w, "failed to store file", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, a)
}
