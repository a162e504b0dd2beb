package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/boltdb/bolt"
	"github.com/keyurgolani/BabyNest-sub006/internal"
)

const (
	babyBucket  = "babies"
	sleepBucket = "sleep_sessions"
)

// BoltStorage keeps babies keyed by id and each baby's sessions in a nested
// bucket keyed by start time, so a reverse cursor walk is newest first.
type BoltStorage struct {
	db     *bolt.DB
	logger internal.Logger
}

func NewBoltStorage(path string, logger internal.Logger) (*BoltStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		logger.Errorf("failed to open bolt db %s: %v", path, err)
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{babyBucket, sleepBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStorage{db: db, logger: logger}, nil
}

func (b *BoltStorage) Close() error {
	return b.db.Close()
}

// --- BabyRepository ---
func (b *BoltStorage) SaveBaby(ctx context.Context, baby *internal.Baby) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		raw, err := json.Marshal(baby)
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(babyBucket)).Put([]byte(baby.ID), raw)
	})
}

func (b *BoltStorage) GetBaby(ctx context.Context, id string) (*internal.Baby, error) {
	var baby *internal.Baby
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(babyBucket)).Get([]byte(id))
		if raw == nil {
			return internal.ErrNotFound
		}
		baby = &internal.Baby{}
		return json.Unmarshal(raw, baby)
	})
	if err != nil {
		return nil, err
	}
	return baby, nil
}

func (b *BoltStorage) ListBabies(ctx context.Context) ([]internal.Baby, error) {
	return b.scanBabies(func(internal.Baby) bool { return true })
}

// ListBabiesByCaregiver scans every baby; bolt only indexes by key.
func (b *BoltStorage) ListBabiesByCaregiver(ctx context.Context, caregiverID string) ([]internal.Baby, error) {
	return b.scanBabies(func(baby internal.Baby) bool { return baby.CaregiverID == caregiverID })
}

func (b *BoltStorage) scanBabies(keep func(internal.Baby) bool) ([]internal.Baby, error) {
	babies := []internal.Baby{}
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(babyBucket)).ForEach(func(_, v []byte) error {
			var baby internal.Baby
			if err := json.Unmarshal(v, &baby); err != nil {
				return err
			}
			if keep(baby) {
				babies = append(babies, baby)
			}
			return nil
		})
	})
	if err != nil {
		b.logger.Errorf("failed to scan babies: %v", err)
		return nil, err
	}
	sort.Slice(babies, func(i, j int) bool {
		return babies[i].CreatedAt.Before(babies[j].CreatedAt)
	})
	return babies, nil
}

// --- SleepSessionRepository ---
func sessionKey(s *internal.SleepSession) []byte {
	return []byte(s.StartTime.UTC().Format("2006-01-02T15:04:05.000000000Z") + "/" + s.ID)
}

func (b *BoltStorage) SaveSleepSession(ctx context.Context, session *internal.SleepSession) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.Bucket([]byte(sleepBucket)).CreateBucketIfNotExists([]byte(session.BabyID))
		if err != nil {
			return err
		}
		raw, err := json.Marshal(session)
		if err != nil {
			return err
		}
		return bucket.Put(sessionKey(session), raw)
	})
}

func (b *BoltStorage) ListSleepSessions(ctx context.Context, babyID string) ([]internal.SleepSession, error) {
	sessions := []internal.SleepSession{}
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sleepBucket)).Bucket([]byte(babyID))
		if bucket == nil {
			return nil
		}
		c := bucket.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var s internal.SleepSession
			if err := json.Unmarshal(v, &s); err != nil {
				return err
			}
			sessions = append(sessions, s)
		}
		return nil
	})
	if err != nil {
		b.logger.Errorf("failed to list sleep sessions: %v", err)
		return nil, err
	}
	return sessions, nil
}

var _ BabyRepository = (*BoltStorage)(nil)
var _ SleepSessionRepository = (*BoltStorage)(nil)
