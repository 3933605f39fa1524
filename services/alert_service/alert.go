package alert_service

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// smsSender is the slice of the Twilio API the notifier needs; satisfied by
// (*twilio.RestClient).Api.
type smsSender interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// Notifier sends throttled SMS alerts to an operations number when the
// knowledge base degrades for configuration reasons. At most one message per
// cool-down window; repeats inside the window are only logged.
type Notifier struct {
	sms      smsSender
	from     string
	to       string
	cooldown time.Duration
	clock    func() time.Time
	logger   *slog.Logger

	mu       sync.Mutex
	lastSent time.Time
}

func NewNotifier(accountSID, authToken, from, to string, cooldown time.Duration, logger *slog.Logger) *Notifier {
	var sms smsSender
	if accountSID != "" && authToken != "" {
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		})
		sms = client.Api
	}
	return &Notifier{
		sms:      sms,
		from:     from,
		to:       to,
		cooldown: cooldown,
		clock:    time.Now,
		logger:   logger,
	}
}

func (n *Notifier) NotifyDegradedSearch(reason string) {
	if n.sms == nil || n.from == "" || n.to == "" {
		n.logger.Warn("Search degradation alert suppressed, Twilio not configured",
			slog.String("reason", reason))
		return
	}

	n.mu.Lock()
	now := n.clock()
	if !n.lastSent.IsZero() && now.Sub(n.lastSent) < n.cooldown {
		n.mu.Unlock()
		n.logger.Debug("Search degradation alert throttled",
			slog.String("reason", reason))
		return
	}
	n.lastSent = now
	n.mu.Unlock()

	body := fmt.Sprintf("Legal assistant: similarity search degraded by a configuration error: %s", reason)
	params := &twilioApi.CreateMessageParams{
		To:   &n.to,
		From: &n.from,
		Body: &body,
	}

	message, err := n.sms.CreateMessage(params)
	if err != nil {
		n.logger.Error("Failed to send degradation alert SMS",
			slog.String("error", err.Error()),
			slog.String("to", n.to))
		return
	}

	n.logger.Info("Search degradation alert sent",
		slog.String("message_sid", stringValue(message.Sid)),
		slog.String("to", n.to))
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
