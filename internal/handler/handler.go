package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/loanpay/emi-service/internal/service"
)

// Handler exposes the service over HTTP
type Handler struct {
	svc *service.Service
}

// NewHandler initializes a new handler
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// response is the envelope every endpoint returns
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type loginRequest struct {
	AccountNumber string `json:"account_number"`
	Mobile        string `json:"mobile"`
}

type createPaymentRequest struct {
	CustomerAccountNumber string      `json:"customer_account_number"`
	Amount                json.Number `json:"amount"`
}

func writeJSON(w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, response{Message: err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, response{Message: "Invalid account number or mobile number"})
	case errors.Is(err, service.ErrCustomerNotFound):
		writeJSON(w, http.StatusNotFound, response{Message: "Customer not found"})
	default:
		writeJSON(w, http.StatusInternalServerError, response{Message: "Internal server error", Error: err.Error()})
	}
}

// Login verifies customer credentials and returns the loan profile
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Message: "Invalid request body"})
		return
	}
	if req.AccountNumber == "" || req.Mobile == "" {
		writeJSON(w, http.StatusBadRequest, response{Message: "Account number and mobile number are required"})
		return
	}

	customer, err := h.svc.Login(req.AccountNumber, req.Mobile)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Message: "Login successful", Data: customer})
}

// GetCustomer returns the loan profile for an account number
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	accountNumber := mux.Vars(r)["accountNumber"]
	if accountNumber == "" {
		writeJSON(w, http.StatusBadRequest, response{Message: "Account number is required"})
		return
	}

	customer, err := h.svc.GetCustomer(accountNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Data: customer})
}

// CreatePayment records an EMI payment for a customer
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Message: "Invalid request body"})
		return
	}
	if req.CustomerAccountNumber == "" || req.Amount == "" {
		writeJSON(w, http.StatusBadRequest, response{Message: "Customer account number and amount are required"})
		return
	}

	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil || amount.Sign() <= 0 {
		writeJSON(w, http.StatusBadRequest, response{Message: "Amount must be a positive number"})
		return
	}

	payment, err := h.svc.RecordPayment(req.CustomerAccountNumber, amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, response{Success: true, Message: "Payment recorded successfully", Data: payment})
}

// ListPayments returns the payment history for an account number
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	accountNumber := mux.Vars(r)["accountNumber"]

	payments, err := h.svc.ListPayments(accountNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Data: payments})
}

// Register wires the handler's routes onto the router
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/customers/login", h.Login).Methods("POST")
	r.HandleFunc("/customers/{accountNumber}", h.GetCustomer).Methods("GET")
	r.HandleFunc("/payments", h.CreatePayment).Methods("POST")
	r.HandleFunc("/payments/{accountNumber}", h.ListPayments).Methods("GET")
}
