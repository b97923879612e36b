package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/vistream-inc/vistream/internal/application/payout/usecases"
)

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

// ChannelContactResolver maps a channel to the email address its payout
// notices go to. Channel profiles live outside this service.
type ChannelContactResolver interface {
	PayoutEmailForChannel(ctx context.Context, channelID uint) (string, error)
}

// SMTPPayoutNotifier emails creators when a payout settles.
type SMTPPayoutNotifier struct {
	config   SMTPConfig
	dialer   *gomail.Dialer
	contacts ChannelContactResolver
}

func NewSMTPPayoutNotifier(config SMTPConfig, contacts ChannelContactResolver) *SMTPPayoutNotifier {
	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)

	return &SMTPPayoutNotifier{
		config:   config,
		dialer:   dialer,
		contacts: contacts,
	}
}

func (s *SMTPPayoutNotifier) NotifyPayoutCompleted(ctx context.Context, n usecases.PayoutNotification) error {
	to, err := s.contacts.PayoutEmailForChannel(ctx, n.ChannelID)
	if err != nil {
		return fmt.Errorf("failed to resolve payout email for channel %d: %w", n.ChannelID, err)
	}

	subject := fmt.Sprintf("Your payout %s has been sent", n.Reference)
	period := fmt.Sprintf("%s to %s", n.PeriodStart.Format("Jan 2, 2006"), n.PeriodEnd.Format("Jan 2, 2006"))

	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Payout Sent</h2>
			<p>Your creator payout for %s is on its way.</p>
			<table>
				<tr><td>Gross earnings</td><td>%s</td></tr>
				<tr><td>Platform fee</td><td>-%s</td></tr>
				<tr><td>Gateway fee</td><td>-%s</td></tr>
				<tr><td>Tax withheld</td><td>-%s</td></tr>
				<tr><td><strong>Net payout</strong></td><td><strong>%s</strong></td></tr>
			</table>
			<p>Payment reference: %s</p>
		</body>
		</html>
	`,
		period,
		formatCents(n.GrossCents, n.Currency),
		formatCents(n.PlatformFeeCents, n.Currency),
		formatCents(n.GatewayFeeCents, n.Currency),
		formatCents(n.TaxWithheldCents, n.Currency),
		formatCents(n.NetCents, n.Currency),
		n.PaymentReference,
	)

	plainBody := fmt.Sprintf(`
Payout Sent

Your creator payout for %s is on its way.

Gross earnings: %s
Platform fee:   -%s
Gateway fee:    -%s
Tax withheld:   -%s
Net payout:     %s

Payment reference: %s
	`,
		period,
		formatCents(n.GrossCents, n.Currency),
		formatCents(n.PlatformFeeCents, n.Currency),
		formatCents(n.GatewayFeeCents, n.Currency),
		formatCents(n.TaxWithheldCents, n.Currency),
		formatCents(n.NetCents, n.Currency),
		n.PaymentReference,
	)

	return s.sendEmail(to, subject, htmlBody, plainBody)
}

func (s *SMTPPayoutNotifier) sendEmail(to, subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.config.FromAddress, s.config.FromName))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func formatCents(cents int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", cents/100, cents%100, currency)
}
