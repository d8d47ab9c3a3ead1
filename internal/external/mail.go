package external

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

// TripSummaryMail is the content sent to a hunter when a trip completes.
type TripSummaryMail struct {
	TripTitle         string
	TargetSpecies     string
	Success           bool
	DurationHours     float64
	ObservationsCount int
	Weather           models.WeatherLabel
}

// Mailer sends the trip-completion summary. The core treats this as
// fire-and-forget (spec.md §4.C step 6): callers must not block the trip
// lifecycle on its result.
type Mailer interface {
	SendTripSummary(ctx context.Context, email string, summary TripSummaryMail) error
}

// SMTPMailer sends mail via a configured SMTP relay, mirroring the
// plain-net/smtp approach the teacher's newsletter delivery channel uses.
type SMTPMailer struct {
	host, port, from string
	auth             smtp.Auth
}

// NewSMTPMailer builds a mailer against an SMTP relay with optional PLAIN auth.
func NewSMTPMailer(host, port, from, username, password string) *SMTPMailer {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPMailer{host: host, port: port, from: from, auth: auth}
}

func (m *SMTPMailer) SendTripSummary(ctx context.Context, email string, summary TripSummaryMail) error {
	body := fmt.Sprintf(
		"Subject: Trip summary: %s\r\n\r\nTarget: %s\nSuccess: %v\nDuration: %.1f hours\nObservations: %d\nWeather: %s\n",
		summary.TripTitle, summary.TargetSpecies, summary.Success, summary.DurationHours, summary.ObservationsCount, summary.Weather,
	)

	addr := m.host + ":" + m.port
	return smtp.SendMail(addr, m.auth, m.from, []string{email}, []byte(body))
}

// NoopMailer discards trip summaries, logging them instead. Used when no
// SMTP relay is configured; never returns an error since delivery is
// fire-and-forget by contract.
type NoopMailer struct{}

// NewNoopMailer builds the discard-and-log mailer.
func NewNoopMailer() *NoopMailer { return &NoopMailer{} }

func (NoopMailer) SendTripSummary(ctx context.Context, email string, summary TripSummaryMail) error {
	log.Info().
		Str("email", email).
		Str("trip", summary.TripTitle).
		Bool("success", summary.Success).
		Time("at", time.Now()).
		Msg("trip summary mail suppressed: no mailer configured")
	return nil
}
