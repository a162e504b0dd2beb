package auth

import (
	"context"
	"errors"

	"github.com/keyurgolani/BabyNest-sub006/internal"
)

var ErrInvalidToken = errors.New("invalid token")

// Provider resolves a bearer token to the caregiver it belongs to.
type Provider interface {
	ValidateTokenLocal(token string) (*internal.Caregiver, error)
	ValidateTokenRemote(ctx context.Context, token string) (*internal.Caregiver, error)
}
