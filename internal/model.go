package internal

import "time"

type Caregiver struct {
	ID    string `json:"id"`
	Token string `json:"token"`
	Name  string `json:"name"`
}

type Baby struct {
	ID          string    `json:"id"`
	CaregiverID string    `json:"caregiver_id"`
	Name        string    `json:"name"`
	DateOfBirth time.Time `json:"date_of_birth,omitzero"`
	CreatedAt   time.Time `json:"created_at"`
}

type SleepSession struct {
	ID        string    `json:"id"`
	BabyID    string    `json:"baby_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Type      string    `json:"type"` // nap, night
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
