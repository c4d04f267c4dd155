package model

import (
	"net/mail"
	"strings"
	"time"

	"account-activation/internal/domain"

	"github.com/google/uuid"
)

// User is the account an activation belongs to. Accounts are owned by the
// surrounding application; this module only reads them (and creates them from
// the operator CLI).
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}

func NewUser(id, email, name string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	return &User{
		ID:        id,
		Email:     normalized,
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now(),
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }

// NormalizeEmail trims and lower-cases an address and rejects anything that
// is not a bare address.
func NormalizeEmail(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" {
		return "", domain.ErrInvalidArgument
	}
	addr, err := mail.ParseAddress(e)
	if err != nil || addr.Address != e {
		return "", domain.ErrInvalidArgument
	}
	return e, nil
}
