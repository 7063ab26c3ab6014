package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shaikfardeenhussain/fixroute/internal/billing/service"
	"github.com/shaikfardeenhussain/fixroute/internal/common/apperr"
	"github.com/shaikfardeenhussain/fixroute/internal/common/auth"
)

type BillingHandler struct {
	Service *service.BillingService
}

func NewBillingHandler(svc *service.BillingService) *BillingHandler {
	return &BillingHandler{Service: svc}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *BillingHandler) CreateBill(w http.ResponseWriter, r *http.Request) {
	var req service.CreateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	claims := auth.FromContext(r)
	bill, err := h.Service.CreateBill(r.Context(), claims.UserID, req)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "bill": bill})
}

func (h *BillingHandler) ListBills(w http.ResponseWriter, r *http.Request) {
	bookingID := r.URL.Query().Get("booking_id")
	if bookingID == "" {
		http.Error(w, "booking_id required", http.StatusBadRequest)
		return
	}

	claims := auth.FromContext(r)
	bills, err := h.Service.ListBills(r.Context(), claims.UserID, bookingID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "bills": bills})
}

func (h *BillingHandler) GetBill(w http.ResponseWriter, r *http.Request) {
	billID := strings.TrimPrefix(r.URL.Path, "/api/bills/")
	if billID == "" {
		http.Error(w, "bill_id required", http.StatusBadRequest)
		return
	}

	claims := auth.FromContext(r)
	bill, err := h.Service.GetBill(r.Context(), claims.UserID, billID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "bill": bill})
}

type createPaymentRequest struct {
	BillID string `json:"bill_id"`
}

func (h *BillingHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.BillID == "" {
		http.Error(w, "bill_id required", http.StatusBadRequest)
		return
	}

	claims := auth.FromContext(r)
	intent, err := h.Service.CreatePayment(r.Context(), claims.UserID, req.BillID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": intent})
}

func (h *BillingHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req service.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.BillID == "" || req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		http.Error(w, "bill_id, order_id, payment_id and signature required", http.StatusBadRequest)
		return
	}

	claims := auth.FromContext(r)
	if err := h.Service.VerifyPayment(r.Context(), claims.UserID, req); err != nil {
		apperr.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
