package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/loanpay/emi-service/internal/models"
	"github.com/loanpay/emi-service/internal/repository"
)

// Sentinel errors mapped to HTTP statuses at the boundary.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrUnauthorized     = errors.New("invalid credentials")
	ErrCustomerNotFound = errors.New("customer not found")
)

// Store is the persistence surface the service needs
type Store interface {
	FindCustomerByAccount(accountNumber string) (*models.Customer, error)
	FindCustomerByCredentials(accountNumber, mobile string) (*models.Customer, error)
	CreatePayment(p *models.Payment) error
	ListPaymentsByAccount(accountNumber string) ([]models.Payment, error)
}

// Notifier sends payment receipts. May be nil when mail is not configured.
type Notifier interface {
	SendPaymentReceipt(to, name string, p *models.Payment, emiDue int) error
}

// Service handles business logic
type Service struct {
	store    Store
	notifier Notifier
	log      *logrus.Logger
}

// NewService initializes a new service
func NewService(store Store, notifier Notifier, log *logrus.Logger) *Service {
	return &Service{store: store, notifier: notifier, log: log}
}

// Login verifies an account number and mobile pair and returns the customer
// profile. Any mismatch, on either field, yields the same ErrUnauthorized.
func (s *Service) Login(accountNumber, mobile string) (*models.Customer, error) {
	if accountNumber == "" || mobile == "" {
		return nil, fmt.Errorf("%w: account number and mobile are required", ErrInvalidArgument)
	}

	customer, err := s.store.FindCustomerByCredentials(accountNumber, mobile)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	s.log.Infof("Customer logged in: %s", customer.AccountNumber)
	return customer, nil
}

// GetCustomer retrieves a customer profile by account number
func (s *Service) GetCustomer(accountNumber string) (*models.Customer, error) {
	if accountNumber == "" {
		return nil, fmt.Errorf("%w: account number is required", ErrInvalidArgument)
	}

	customer, err := s.store.FindCustomerByAccount(accountNumber)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return customer, nil
}

// RecordPayment validates and stores a payment against a customer's loan.
// The payment is completed when the amount covers the current EMI amount,
// partial otherwise; each payment is classified independently, with no
// running balance across payments. A completed payment decrements the
// customer's outstanding EMI count by one.
func (s *Service) RecordPayment(accountNumber string, amount decimal.Decimal) (*models.Payment, error) {
	if accountNumber == "" {
		return nil, fmt.Errorf("%w: account number is required", ErrInvalidArgument)
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be a positive number", ErrInvalidArgument)
	}

	customer, err := s.store.FindCustomerByAccount(accountNumber)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}

	status := models.PaymentStatusPartial
	if amount.Cmp(customer.EMIAmount) >= 0 {
		status = models.PaymentStatusCompleted
	}

	payment := &models.Payment{
		CustomerAccountNumber: customer.AccountNumber,
		Amount:                amount,
		PaymentDate:           time.Now().Format("2006-01-02"),
		Status:                status,
	}
	if err := s.store.CreatePayment(payment); err != nil {
		return nil, err
	}

	remaining := customer.EMIDue
	if status == models.PaymentStatusCompleted && remaining > 0 {
		remaining--
	}

	// Receipt mail is best-effort; a delivery failure never fails the payment.
	if s.notifier != nil && customer.Email != "" {
		if err := s.notifier.SendPaymentReceipt(customer.Email, customer.Name, payment, remaining); err != nil {
			s.log.Warnf("Failed to send payment receipt to %s: %v", customer.AccountNumber, err)
		}
	}

	s.log.Infof("Payment recorded for %s: %s (%s)", customer.AccountNumber, amount.StringFixed(2), status)
	return payment, nil
}

// ListPayments returns the payment history for an account, newest first
func (s *Service) ListPayments(accountNumber string) ([]models.Payment, error) {
	return s.store.ListPaymentsByAccount(accountNumber)
}
