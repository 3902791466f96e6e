package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/beer-stock/internal/core/service"
	"github.com/rl1809/beer-stock/internal/metrics"
)

const idempotencyHeader = "Idempotency-Key"

// itemParam is the item name on GET and the numeric ID on DELETE and PATCH.
const itemParam = "item"

type HTTPHandler struct {
	itemService *service.ItemService
	validate    *validator.Validate
	log         logrus.FieldLogger
	timeout     time.Duration
}

type ErrorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func NewHTTPHandler(itemService *service.ItemService, log logrus.FieldLogger, timeout time.Duration) *HTTPHandler {
	return &HTTPHandler{
		itemService: itemService,
		validate:    newValidator(),
		log:         log,
		timeout:     timeout,
	}
}

// Routes returns the full HTTP surface: the item API under /api/v1, health and metrics.
func (h *HTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.log))
	r.Use(metrics.Middleware)

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/items", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.ListAll)
		r.Get("/{"+itemParam+"}", h.FindByName)
		r.Delete("/{"+itemParam+"}", h.DeleteByID)
		r.Patch("/{"+itemParam+"}/increment", h.Increment)
	})

	return r
}

func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	var req ItemDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Message: "validation failed",
			Errors:  validationMessages(err),
		})
		return
	}

	item, err := h.itemService.Create(ctx, ToDomain(req))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, FromDomain(*item))
}

func (h *HTTPHandler) FindByName(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	name := chi.URLParam(r, itemParam)
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}

	item, err := h.itemService.FindByName(ctx, name)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromDomain(*item))
}

func (h *HTTPHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	items, err := h.itemService.ListAll(ctx)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromDomainList(items))
}

func (h *HTTPHandler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.itemService.DeleteByID(ctx, id); err != nil {
		h.writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) Increment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req IncrementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Message: "validation failed",
			Errors:  validationMessages(err),
		})
		return
	}

	item, err := h.itemService.IncrementOnce(ctx, r.Header.Get(idempotencyHeader), id, req.Amount)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromDomain(*item))
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.timeout)
}

func (h *HTTPHandler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, message := errorStatus(err)
	if status >= http.StatusInternalServerError {
		loggerFrom(ctx, h.log).WithError(err).Error("request failed")
	}
	writeJSON(w, status, ErrorResponse{Message: message})
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, itemParam), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid item id"})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
