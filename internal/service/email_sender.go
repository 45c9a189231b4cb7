package service

import (
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-mail/mail/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type EmailSender struct {
	dialer  *mail.Dialer
	logger  *logrus.Logger
	enabled bool
}

func NewEmailSender(logger *logrus.Logger) *EmailSender {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPortStr := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	enabled := os.Getenv("EMAIL_SENDER_ENABLED") == "true"
	insecureSkipVerify := os.Getenv("INSECURE_SKIP_VERIFY") == "true"

	smtpPort, err := strconv.Atoi(smtpPortStr)
	if err != nil {
		smtpPort = 587
	}

	d := mail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	d.TLSConfig = &tls.Config{
		ServerName:         smtpHost,
		InsecureSkipVerify: insecureSkipVerify,
	}

	return &EmailSender{
		dialer:  d,
		logger:  logger,
		enabled: enabled,
	}
}

// SendRepaymentReminder delivers the daily digest of installments that are
// due today or overdue for one group.
func (es *EmailSender) SendRepaymentReminder(to string, dueToday, overdue int, totalDue decimal.Decimal) error {
	if !es.enabled {
		es.logger.Warn("Email notifications disabled, skipping reminder")
		return nil
	}

	subject := "SHG repayment reminder"
	content := fmt.Sprintf(`
		<h1>Repayment reminder</h1>
		<p>Installments due today: <strong>%d</strong></p>
		<p>Installments overdue: <strong>%d</strong></p>
		<p>Total amount outstanding: <strong>Rs. %s</strong></p>
		<p>Date: <strong>%s</strong></p>
		<small>This is an automated notification, please do not reply</small>
	`, dueToday, overdue, totalDue.StringFixed(0), time.Now().Format("02.01.2006"))

	return es.sendEmail(to, subject, content)
}

func (es *EmailSender) sendEmail(to, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", os.Getenv("SMTP_USER"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := es.dialer.DialAndSend(m); err != nil {
		es.logger.WithError(err).Error("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	es.logger.Infof("Email sent to %s", to)
	return nil
}
