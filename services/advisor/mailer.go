package advisor

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

type Mailer struct {
	config SmtpConfig
}

func NewMailer(config SmtpConfig) Mailer {
	return Mailer{config: config}
}

// SendReport delivers a rendered advisor report over SMTP.
func (m Mailer) SendReport(ctx context.Context, to string, report Report) error {
	ctx, span := tracer.Start(ctx, "SendReport")
	defer span.End()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Kick Advisor <%s>", m.config.EmailAddress)
	mail.To = []string{to}
	mail.Subject = fmt.Sprintf("Campaign report %s", report.Id)
	mail.Text = []byte(FormatReportText(report))

	err := mail.Send(
		fmt.Sprintf("%s:%d", m.config.Server, m.config.Port),
		smtp.PlainAuth("", m.config.EmailAddress, m.config.Password, m.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(fmt.Sprintf("%s:%d", m.config.Server, m.config.Port), nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}

	return nil
}
