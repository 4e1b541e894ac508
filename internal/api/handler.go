package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/eliudmichira/Hama-Estate-sub005/internal/domain"
	"github.com/eliudmichira/Hama-Estate-sub005/internal/service"
)

// Metrics
var (
	httpReqTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentledger_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rentledger_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"method", "endpoint"})
)

// Handler maps the HTTP surface onto the tenant service. The clock is
// sampled exactly once per request, here at the edge, and handed down so
// every computation for a request sees the same instant.
type Handler struct {
	tenants *service.TenantService
	log     *zap.Logger
	now     func() time.Time
}

func NewHandler(tenants *service.TenantService, log *zap.Logger) *Handler {
	return &Handler{tenants: tenants, log: log, now: time.Now}
}

// Register attaches the versioned routes to the router.
func (h *Handler) Register(r *mux.Router) {
	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/tenants/{id}", h.GetTenant).Methods("GET")
	v1.HandleFunc("/tenants/{id}/billing", h.GetBilling).Methods("GET")
	v1.HandleFunc("/tenants/{id}/payments", h.RecordPayment).Methods("POST")
	v1.HandleFunc("/tenants/{id}/autopay", h.SetAutoPay).Methods("PUT")
	v1.HandleFunc("/tenants/{id}/maintenance", h.FileMaintenance).Methods("POST")
	v1.HandleFunc("/tenants/{id}/maintenance", h.ListMaintenance).Methods("GET")
	v1.HandleFunc("/tenants/{id}/maintenance/{reqID}", h.UpdateMaintenance).Methods("PATCH")
}

func (h *Handler) GetBilling(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpLatency.WithLabelValues("GET", "/tenants/{id}/billing"))
	defer timer.ObserveDuration()

	id, ok := h.tenantID(w, r, "GET", "/tenants/{id}/billing")
	if !ok {
		return
	}

	snap, err := h.tenants.Snapshot(r.Context(), id, h.now())
	if err != nil {
		h.respondDomainError(w, err, "GET", "/tenants/{id}/billing")
		return
	}
	h.respondJSON(w, http.StatusOK, snap, "GET", "/tenants/{id}/billing")
}

func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tenantID(w, r, "GET", "/tenants/{id}")
	if !ok {
		return
	}

	agg, err := h.tenants.Aggregate(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, err, "GET", "/tenants/{id}")
		return
	}
	h.respondJSON(w, http.StatusOK, agg, "GET", "/tenants/{id}")
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpLatency.WithLabelValues("POST", "/tenants/{id}/payments"))
	defer timer.ObserveDuration()

	id, ok := h.tenantID(w, r, "POST", "/tenants/{id}/payments")
	if !ok {
		return
	}

	var req domain.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON", "POST", "/tenants/{id}/payments")
		return
	}

	rec, snap, err := h.tenants.RecordPayment(r.Context(), id, req, h.now())
	if err != nil {
		h.respondDomainError(w, err, "POST", "/tenants/{id}/payments")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"payment":  rec,
		"snapshot": snap,
	}, "POST", "/tenants/{id}/payments")
}

func (h *Handler) SetAutoPay(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tenantID(w, r, "PUT", "/tenants/{id}/autopay")
	if !ok {
		return
	}

	var req domain.AutoPayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON", "PUT", "/tenants/{id}/autopay")
		return
	}

	account, snap, err := h.tenants.SetAutoPay(r.Context(), id, req, h.now())
	if err != nil {
		h.respondDomainError(w, err, "PUT", "/tenants/{id}/autopay")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"account":  account,
		"snapshot": snap,
	}, "PUT", "/tenants/{id}/autopay")
}

func (h *Handler) FileMaintenance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tenantID(w, r, "POST", "/tenants/{id}/maintenance")
	if !ok {
		return
	}

	var input domain.MaintenanceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON", "POST", "/tenants/{id}/maintenance")
		return
	}

	req, snap, err := h.tenants.FileMaintenanceRequest(r.Context(), id, input, h.now())
	if err != nil {
		h.respondDomainError(w, err, "POST", "/tenants/{id}/maintenance")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"request":  req,
		"snapshot": snap,
	}, "POST", "/tenants/{id}/maintenance")
}

func (h *Handler) UpdateMaintenance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tenantID(w, r, "PATCH", "/tenants/{id}/maintenance/{reqID}")
	if !ok {
		return
	}
	reqID, err := uuid.Parse(mux.Vars(r)["reqID"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request id", "PATCH", "/tenants/{id}/maintenance/{reqID}")
		return
	}

	var update domain.MaintenanceStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON", "PATCH", "/tenants/{id}/maintenance/{reqID}")
		return
	}

	req, snap, err := h.tenants.UpdateMaintenanceStatus(r.Context(), id, reqID, update.Status, h.now())
	if err != nil {
		h.respondDomainError(w, err, "PATCH", "/tenants/{id}/maintenance/{reqID}")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"request":  req,
		"snapshot": snap,
	}, "PATCH", "/tenants/{id}/maintenance/{reqID}")
}

func (h *Handler) ListMaintenance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tenantID(w, r, "GET", "/tenants/{id}/maintenance")
	if !ok {
		return
	}

	agg, err := h.tenants.Aggregate(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, err, "GET", "/tenants/{id}/maintenance")
		return
	}
	h.respondJSON(w, http.StatusOK, agg.Requests, "GET", "/tenants/{id}/maintenance")
}

// Helpers

func (h *Handler) tenantID(w http.ResponseWriter, r *http.Request, method, endpoint string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid tenant id", method, endpoint)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondDomainError(w http.ResponseWriter, err error, method, endpoint string) {
	switch {
	case errors.Is(err, domain.ErrTenantNotFound):
		h.respondError(w, http.StatusNotFound, "Tenant not found", method, endpoint)
	case errors.Is(err, domain.ErrInvalidAmount):
		h.respondError(w, http.StatusUnprocessableEntity, "Amount must be positive", method, endpoint)
	case errors.Is(err, domain.ErrMissingPaymentMethod):
		h.respondError(w, http.StatusUnprocessableEntity, "Payment method required", method, endpoint)
	case errors.Is(err, domain.ErrRequestNotFound):
		h.respondError(w, http.StatusNotFound, "Maintenance request not found", method, endpoint)
	case errors.Is(err, domain.ErrInvalidRequest):
		h.respondError(w, http.StatusUnprocessableEntity, "Invalid request payload", method, endpoint)
	case errors.Is(err, domain.ErrInvalidTransition):
		h.respondError(w, http.StatusUnprocessableEntity, "Illegal status transition", method, endpoint)
	case errors.Is(err, domain.ErrPersistence):
		h.log.Error("gateway failure", zap.String("endpoint", endpoint), zap.Error(err))
		h.respondError(w, http.StatusBadGateway, "Storage unavailable, nothing was changed", method, endpoint)
	default:
		h.log.Error("unhandled error", zap.String("endpoint", endpoint), zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Internal Server Error", method, endpoint)
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, code int, payload interface{}, method, endpoint string) {
	httpReqTotal.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func (h *Handler) respondError(w http.ResponseWriter, code int, msg, method, endpoint string) {
	h.respondJSON(w, code, map[string]string{"error": msg}, method, endpoint)
}
