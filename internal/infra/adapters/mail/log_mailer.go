package mail

import (
	"context"

	"account-activation/internal/domain/model"
	"account-activation/internal/domain/ports/adapter"
	"account-activation/internal/infra/logging"

	"github.com/rs/zerolog"
)

var _ adapter.Mailer = (*LogMailer)(nil)

// LogMailer writes activation links to the log instead of sending mail.
// For local/dev setups without a mail provider.
type LogMailer struct {
	log *zerolog.Logger
	dev bool
}

func NewLogMailer(logger *zerolog.Logger, dev bool) *LogMailer {
	return &LogMailer{log: logger, dev: dev}
}

func (m *LogMailer) Name() string { return "log" }

func (m *LogMailer) SendActivation(ctx context.Context, to *model.User, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logging.With(ctx, m.log).Info().
		Str("to", logging.Redact(to.Email, m.dev)).
		Str("link", logging.Redact(link, m.dev)).
		Msg("activation mail")
	return nil
}
