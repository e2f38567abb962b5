package reminder

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/loanpay/emi-service/internal/models"
)

// Store lists the customers the job should remind
type Store interface {
	ListCustomersWithDueEMI() ([]models.Customer, error)
}

// Sender delivers reminder mails
type Sender interface {
	SendEMIReminder(to, name string, emiAmount decimal.Decimal, emiDue int) error
}

// Job mails every customer with outstanding installments. It is scheduled
// from main via cron and satisfies cron.Job.
type Job struct {
	store  Store
	sender Sender
	log    *logrus.Logger
}

// NewJob initializes a new reminder job
func NewJob(store Store, sender Sender, log *logrus.Logger) *Job {
	return &Job{store: store, sender: sender, log: log}
}

// Run executes one reminder pass. A failed send is logged and skipped so one
// bad address never blocks the rest of the batch.
func (j *Job) Run() {
	customers, err := j.store.ListCustomersWithDueEMI()
	if err != nil {
		j.log.Errorf("Failed to list customers with due EMIs: %v", err)
		return
	}

	sent := 0
	for _, c := range customers {
		if c.Email == "" {
			continue
		}
		if err := j.sender.SendEMIReminder(c.Email, c.Name, c.EMIAmount, c.EMIDue); err != nil {
			j.log.Warnf("Failed to send EMI reminder to %s: %v", c.AccountNumber, err)
			continue
		}
		sent++
	}
	j.log.Infof("EMI reminder run complete: %d of %d sent", sent, len(customers))
}
