package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/keyurgolani/BabyNest-sub006/internal"
	"github.com/keyurgolani/BabyNest-sub006/internal/storage"
)

type BabyRequest struct {
	Name        string     `json:"name" validate:"required,max=100"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
}

var ErrFutureBirthDate = errors.New("date_of_birth is in the future")

func ValidateBabyRequest(req *BabyRequest, now time.Time) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	if req.DateOfBirth != nil && req.DateOfBirth.After(now) {
		return ErrFutureBirthDate
	}
	return nil
}

func CreateBaby(ctx context.Context, repo storage.BabyRepository, caregiver *internal.Caregiver, req *BabyRequest, now time.Time) (*internal.Baby, error) {
	baby := &internal.Baby{
		ID:          uuid.NewString(),
		CaregiverID: caregiver.ID,
		Name:        req.Name,
		CreatedAt:   now,
	}
	if req.DateOfBirth != nil {
		baby.DateOfBirth = *req.DateOfBirth
	}
	if err := repo.SaveBaby(ctx, baby); err != nil {
		return nil, err
	}
	return baby, nil
}
