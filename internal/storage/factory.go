package storage

import (
	"fmt"
	"io"

	"github.com/keyurgolani/BabyNest-sub006/internal"
	"github.com/keyurgolani/BabyNest-sub006/internal/config"
)

type Repositories struct {
	Babies BabyRepository
	Sleep  SleepSessionRepository
	io.Closer
}

func NewRepositories(cfg *config.Config, logger internal.Logger) (*Repositories, error) {
	switch cfg.DBType {
	case "file":
		s, err := NewFileStorage(cfg.FileBabies, cfg.FileSleep, logger)
		if err != nil {
			return nil, err
		}
		return &Repositories{Babies: s, Sleep: s, Closer: s}, nil
	case "postgres":
		s, err := NewPostgresStorage(cfg.DBDSN, logger)
		if err != nil {
			return nil, err
		}
		return &Repositories{Babies: s, Sleep: s, Closer: s}, nil
	case "bolt":
		s, err := NewBoltStorage(cfg.BoltPath, logger)
		if err != nil {
			return nil, err
		}
		return &Repositories{Babies: s, Sleep: s, Closer: s}, nil
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.DBType)
	}
}
