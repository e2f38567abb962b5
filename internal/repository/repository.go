package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/loanpay/emi-service/internal/models"
)

// ErrNotFound is returned when a queried row does not exist
var ErrNotFound = errors.New("not found")

const customerColumns = `account_number, name, mobile, COALESCE(email, ''), emi_due, emi_amount, interest_rate, issue_date, tenure`

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*models.Customer, error) {
	c := &models.Customer{}
	var issueDate time.Time
	err := row.Scan(&c.AccountNumber, &c.Name, &c.Mobile, &c.Email, &c.EMIDue,
		&c.EMIAmount, &c.InterestRate, &issueDate, &c.Tenure)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan customer: %w", err)
	}
	c.IssueDate = issueDate.Format("2006-01-02")
	return c, nil
}

// FindCustomerByAccount retrieves a customer by account number
func (r *Repository) FindCustomerByAccount(accountNumber string) (*models.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM loans.customers
		WHERE account_number = $1`
	return scanCustomer(r.db.QueryRow(query, accountNumber))
}

// FindCustomerByCredentials retrieves a customer matching both account number
// and mobile. A miss on either field yields the same ErrNotFound.
func (r *Repository) FindCustomerByCredentials(accountNumber, mobile string) (*models.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM loans.customers
		WHERE account_number = $1 AND mobile = $2`
	return scanCustomer(r.db.QueryRow(query, accountNumber, mobile))
}

// CreatePayment inserts a payment and, for completed payments, decrements the
// customer's outstanding EMI count. Both writes commit as one transaction so a
// recorded payment is never observed without its EMI effect. The decrement is
// clamped at zero.
func (r *Repository) CreatePayment(p *models.Payment) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO loans.payments (customer_account_number, amount, payment_date, status, created_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		RETURNING id`
	if err := tx.QueryRow(insert, p.CustomerAccountNumber, p.Amount, p.PaymentDate, p.Status).Scan(&p.ID); err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	if p.Status == models.PaymentStatusCompleted {
		update := `
			UPDATE loans.customers
			SET emi_due = GREATEST(emi_due - 1, 0), updated_at = CURRENT_TIMESTAMP
			WHERE account_number = $1`
		if _, err := tx.Exec(update, p.CustomerAccountNumber); err != nil {
			return fmt.Errorf("failed to decrement emi_due: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payment: %w", err)
	}
	return nil
}

// ListPaymentsByAccount returns all payments for an account, newest first.
// An unknown account yields an empty slice, not an error.
func (r *Repository) ListPaymentsByAccount(accountNumber string) ([]models.Payment, error) {
	query := `
		SELECT id, customer_account_number, amount, payment_date, status
		FROM loans.payments
		WHERE customer_account_number = $1
		ORDER BY payment_date DESC, id DESC`
	rows, err := r.db.Query(query, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		var paymentDate time.Time
		if err := rows.Scan(&p.ID, &p.CustomerAccountNumber, &p.Amount, &paymentDate, &p.Status); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.PaymentDate = paymentDate.Format("2006-01-02")
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read payments: %w", err)
	}
	return payments, nil
}

// ListCustomersWithDueEMI returns customers with outstanding installments and
// a known email address, for the reminder job.
func (r *Repository) ListCustomersWithDueEMI() ([]models.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM loans.customers
		WHERE emi_due > 0 AND email IS NOT NULL`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers with due EMIs: %w", err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read customers: %w", err)
	}
	return customers, nil
}
