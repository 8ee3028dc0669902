package provider

import (
	"context"
	"errors"

	"go-shift-coverage/internal/domain/entity"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailInUse         = errors.New("email already in use")
	ErrWeakPassword       = errors.New("password is too weak")
	ErrNetwork            = errors.New("identity provider unreachable")
)

// IdentityProvider is the external authentication service. It verifies credentials,
// creates accounts and reports session changes; it knows nothing about profiles.
type IdentityProvider interface {
	SignInWithCredentials(ctx context.Context, email, password string) (*entity.Identity, error)
	CreateAccount(ctx context.Context, email, password string) (*entity.Identity, error)
	SignOut(ctx context.Context) error

	// Subscribe delivers the current identity (nil when signed out) and then every
	// later change to onChange, one call at a time. The returned func cancels the
	// subscription and is safe to call more than once.
	Subscribe(ctx context.Context, onChange func(*entity.Identity)) (unsubscribe func(), err error)
}
