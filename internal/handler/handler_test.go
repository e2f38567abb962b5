package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loanpay/emi-service/internal/models"
	"github.com/loanpay/emi-service/internal/repository"
	"github.com/loanpay/emi-service/internal/service"
)

type fakeStore struct {
	customers map[string]*models.Customer
	payments  []models.Payment
	nextID    int64
	createErr error
}

func newFakeStore(customers ...*models.Customer) *fakeStore {
	fs := &fakeStore{customers: map[string]*models.Customer{}}
	for _, c := range customers {
		fs.customers[c.AccountNumber] = c
	}
	return fs
}

func (f *fakeStore) FindCustomerByAccount(accountNumber string) (*models.Customer, error) {
	c, ok := f.customers[accountNumber]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) FindCustomerByCredentials(accountNumber, mobile string) (*models.Customer, error) {
	c, ok := f.customers[accountNumber]
	if !ok || c.Mobile != mobile {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) CreatePayment(p *models.Payment) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	p.ID = f.nextID
	f.payments = append(f.payments, *p)
	return nil
}

func (f *fakeStore) ListPaymentsByAccount(accountNumber string) ([]models.Payment, error) {
	out := []models.Payment{}
	for _, p := range f.payments {
		if p.CustomerAccountNumber == accountNumber {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PaymentDate != out[j].PaymentDate {
			return out[i].PaymentDate > out[j].PaymentDate
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func testCustomer() *models.Customer {
	return &models.Customer{
		AccountNumber: "ACC001",
		Name:          "Rahul Sharma",
		Mobile:        "9876543210",
		EMIDue:        12,
		EMIAmount:     decimal.NewFromInt(5000),
		InterestRate:  decimal.NewFromFloat(8.5),
		IssueDate:     "2025-01-15",
		Tenure:        24,
	}
}

func newTestRouter(store service.Store) *mux.Router {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := service.NewService(store, nil, logger)
	h := NewHandler(svc)
	r := mux.NewRouter()
	h.Register(r)
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func doRequest(t *testing.T, router *mux.Router, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestLoginSuccess(t *testing.T) {
	router := newTestRouter(newFakeStore(testCustomer()))

	rec, env := doRequest(t, router, http.MethodPost, "/customers/login",
		map[string]string{"account_number": "ACC001", "mobile": "9876543210"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Login successful", env.Message)

	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "ACC001", data["account_number"])
	assert.Equal(t, "Rahul Sharma", data["name"])
	assert.Equal(t, float64(5000), data["emi_amount"], "amounts travel as JSON numbers")
	assert.Equal(t, float64(12), data["emi_due"])
}

func TestLoginMissingFields(t *testing.T) {
	router := newTestRouter(newFakeStore(testCustomer()))

	rec, env := doRequest(t, router, http.MethodPost, "/customers/login",
		map[string]string{"account_number": "ACC001"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Account number and mobile number are required", env.Message)
}

func TestLoginMismatch(t *testing.T) {
	router := newTestRouter(newFakeStore(testCustomer()))

	tests := []struct {
		name string
		body map[string]string
	}{
		{"wrong mobile", map[string]string{"account_number": "ACC001", "mobile": "9999999999"}},
		{"unknown account", map[string]string{"account_number": "ACC999", "mobile": "9876543210"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doRequest(t, router, http.MethodPost, "/customers/login", tt.body)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, env.Success)
			assert.Equal(t, "Invalid account number or mobile number", env.Message)
		})
	}
}

func TestGetCustomer(t *testing.T) {
	router := newTestRouter(newFakeStore(testCustomer()))

	rec, env := doRequest(t, router, http.MethodGet, "/customers/ACC001", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "2025-01-15", data["issue_date"])
	assert.Equal(t, float64(24), data["tenure"])
}

func TestGetCustomerNotFound(t *testing.T) {
	router := newTestRouter(newFakeStore(testCustomer()))

	rec, env := doRequest(t, router, http.MethodGet, "/customers/ACC999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Customer not found", env.Message)
}

func TestCreatePaymentCompleted(t *testing.T) {
	router := newTestRouter(newFakeStore(testCustomer()))

	rec, env := doRequest(t, router, http.MethodPost, "/payments",
		map[string]any{"customer_account_number": "ACC001", "amount": 5000})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Payment recorded successfully", env.Message)

	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, float64(1), data["id"])
	assert.Equal(t, "completed", data["status"])
	assert.Equal(t, float64(5000), data["amount"])
}

func TestCreatePaymentPartial(t *testing.T) {
	router := newTestRouter(newFakeStore(testCustomer()))

	rec, env := doRequest(t, router, http.MethodPost, "/payments",
		map[string]any{"customer_account_number": "ACC001", "amount": 2000})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "partial", data["status"])
}

func TestCreatePaymentValidation(t *testing.T) {
	router := newTestRouter(newFakeStore(testCustomer()))

	tests := []struct {
		name        string
		body        map[string]any
		wantMessage string
	}{
		{
			"missing amount",
			map[string]any{"customer_account_number": "ACC001"},
			"Customer account number and amount are required",
		},
		{
			"missing account",
			map[string]any{"amount": 5000},
			"Customer account number and amount are required",
		},
		{
			"zero amount",
			map[string]any{"customer_account_number": "ACC001", "amount": 0},
			"Amount must be a positive number",
		},
		{
			"negative amount",
			map[string]any{"customer_account_number": "ACC001", "amount": -5},
			"Amount must be a positive number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doRequest(t, router, http.MethodPost, "/payments", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantMessage, env.Message)
		})
	}
}

func TestCreatePaymentUnknownCustomer(t *testing.T) {
	router := newTestRouter(newFakeStore(testCustomer()))

	rec, env := doRequest(t, router, http.MethodPost, "/payments",
		map[string]any{"customer_account_number": "UNKNOWN", "amount": 100})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Customer not found", env.Message)
}

func TestCreatePaymentStoreFailure(t *testing.T) {
	store := newFakeStore(testCustomer())
	store.createErr = errors.New("connection reset")
	router := newTestRouter(store)

	rec, env := doRequest(t, router, http.MethodPost, "/payments",
		map[string]any{"customer_account_number": "ACC001", "amount": 5000})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", env.Message)
	assert.NotEmpty(t, env.Error)
}

func TestListPaymentsOrdering(t *testing.T) {
	store := newFakeStore(testCustomer())
	store.payments = []models.Payment{
		{ID: 1, CustomerAccountNumber: "ACC001", Amount: decimal.NewFromInt(5000), PaymentDate: "2026-08-01", Status: models.PaymentStatusCompleted},
		{ID: 2, CustomerAccountNumber: "ACC001", Amount: decimal.NewFromInt(2000), PaymentDate: "2026-08-15", Status: models.PaymentStatusPartial},
		{ID: 3, CustomerAccountNumber: "ACC001", Amount: decimal.NewFromInt(5000), PaymentDate: "2026-08-15", Status: models.PaymentStatusCompleted},
	}
	router := newTestRouter(store)

	rec, env := doRequest(t, router, http.MethodGet, "/payments/ACC001", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var data []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data, 3)
	assert.Equal(t, float64(3), data[0]["id"], "same date orders by id desc")
	assert.Equal(t, float64(2), data[1]["id"])
	assert.Equal(t, float64(1), data[2]["id"])
}

func TestListPaymentsEmpty(t *testing.T) {
	router := newTestRouter(newFakeStore(testCustomer()))

	rec, env := doRequest(t, router, http.MethodGet, "/payments/ACC001", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "[]", string(env.Data), "no payments yields an empty array, not an error")
}
