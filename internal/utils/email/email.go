package email

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/loanpay/emi-service/internal/config"
	"github.com/loanpay/emi-service/internal/models"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

func receiptSubject(status string) string {
	if status == models.PaymentStatusPartial {
		return "Partial EMI Payment Received"
	}
	return "EMI Payment Received"
}

func receiptBody(name string, p *models.Payment, emiDue int) string {
	body := fmt.Sprintf("Dear %s,\n\n", name)
	if p.Status == models.PaymentStatusPartial {
		body += fmt.Sprintf(
			"We have received your partial payment of %s on %s.\n"+
				"It does not cover a full installment, so your outstanding EMI count is unchanged.\n",
			p.Amount.StringFixed(2), p.PaymentDate,
		)
	} else {
		body += fmt.Sprintf(
			"We have received your EMI payment of %s on %s.\n",
			p.Amount.StringFixed(2), p.PaymentDate,
		)
	}
	body += fmt.Sprintf("Remaining installments: %d\n", emiDue)
	body += "\nBest regards,\nLoan Services"
	return body
}

func reminderBody(name string, emiAmount decimal.Decimal, emiDue int) string {
	return fmt.Sprintf(
		"Dear %s,\n\n"+
			"This is a reminder that your EMI of %s is due.\n"+
			"You have %d installment(s) outstanding.\n"+
			"\nBest regards,\nLoan Services",
		name, emiAmount.StringFixed(2), emiDue,
	)
}

func (s *Sender) send(to, subject, body string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, subject)
	return nil
}

// SendPaymentReceipt sends a receipt for a recorded payment
func (s *Sender) SendPaymentReceipt(to, name string, p *models.Payment, emiDue int) error {
	return s.send(to, receiptSubject(p.Status), receiptBody(name, p, emiDue))
}

// SendEMIReminder sends a reminder for an outstanding installment
func (s *Sender) SendEMIReminder(to, name string, emiAmount decimal.Decimal, emiDue int) error {
	return s.send(to, "EMI Payment Reminder", reminderBody(name, emiAmount, emiDue))
}
