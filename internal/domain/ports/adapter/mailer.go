package adapter

import (
	"context"

	"account-activation/internal/domain/model"
)

// Mailer is the hex port for delivering activation links.
type Mailer interface {
	Name() string
	// SendActivation delivers link to the user's address.
	SendActivation(ctx context.Context, to *model.User, link string) error
}
