package storage

import (
	"context"

	"github.com/keyurgolani/BabyNest-sub006/internal"
)

type BabyRepository interface {
	SaveBaby(ctx context.Context, baby *internal.Baby) error
	// GetBaby returns internal.ErrNotFound for unknown ids.
	GetBaby(ctx context.Context, id string) (*internal.Baby, error)
	ListBabies(ctx context.Context) ([]internal.Baby, error)
	ListBabiesByCaregiver(ctx context.Context, caregiverID string) ([]internal.Baby, error)
}

type SleepSessionRepository interface {
	SaveSleepSession(ctx context.Context, session *internal.SleepSession) error
	// ListSleepSessions returns a baby's sessions newest first.
	ListSleepSessions(ctx context.Context, babyID string) ([]internal.SleepSession, error)
}
