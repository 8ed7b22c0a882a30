package worker

// notify_worker.go
// Processes notification jobs from QueueNotify: star-guide promotion
// congratulations and pending-review alerts for the moderation inbox.

import (
	"context"
	"encoding/json"

	"tourdesk/internal/infra"

	"github.com/rs/zerolog/log"
)

// NotifyJobPayload is the job envelope sent to QueueNotify.
type NotifyJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NotifyWorker sends notification emails via SMTP.
type NotifyWorker struct {
	mailer *infra.Mailer
}

func NewNotifyWorker(mailer *infra.Mailer) *NotifyWorker {
	return &NotifyWorker{mailer: mailer}
}

// Process sends the notification email. Failures are logged, never retried:
// notifications are best-effort and the triggering write already committed.
func (w *NotifyWorker) Process(_ context.Context, raw json.RawMessage) {
	var payload NotifyJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("notify_worker: invalid payload")
		return
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("notify_worker: empty to_email — skipping")
		return
	}

	if err := w.mailer.Send(payload.ToEmail, payload.Subject, payload.Body); err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("notify_worker: failed to send email")
		return
	}
	log.Info().Str("to", payload.ToEmail).Str("subject", payload.Subject).Msg("notify_worker: email sent")
}
