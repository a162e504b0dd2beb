package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/keyurgolani/BabyNest-sub006/internal"
)

type FileStorage struct {
	babies        map[string]*internal.Baby          // id -> Baby
	sessions      map[string]*internal.SleepSession  // id -> SleepSession
	babySessions  map[string][]*internal.SleepSession // babyID -> sessions (sorted descending)
	mu            sync.RWMutex
	writeMu       sync.Mutex // serializes file writes between workers and Close
	babiesFile    string
	sleepFile     string
	saveBabyChan  chan struct{}
	saveSleepChan chan struct{}
	shutdownChan  chan struct{}
	closeOnce     sync.Once
	saveDelay     time.Duration
	logger        internal.Logger
}

func NewFileStorage(babiesFile, sleepFile string, logger internal.Logger) (*FileStorage, error) {
	s := &FileStorage{
		babies:        make(map[string]*internal.Baby),
		sessions:      make(map[string]*internal.SleepSession),
		babySessions:  make(map[string][]*internal.SleepSession),
		babiesFile:    babiesFile,
		sleepFile:     sleepFile,
		saveBabyChan:  make(chan struct{}, 1),
		saveSleepChan: make(chan struct{}, 1),
		shutdownChan:  make(chan struct{}),
		saveDelay:     500 * time.Millisecond,
		logger:        logger,
	}

	for _, p := range []string{babiesFile, sleepFile} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, err
		}
	}
	if err := s.loadBabies(); err != nil {
		logger.Errorf("storage: failed to load babies: %v", err)
		return nil, err
	}
	if err := s.loadSleepSessions(); err != nil {
		logger.Errorf("storage: failed to load sleep sessions: %v", err)
		return nil, err
	}

	go s.saveWorker(s.saveBabyChan, "babies", s.saveBabies)
	go s.saveWorker(s.saveSleepChan, "sleep sessions", s.saveSleepSessions)

	return s, nil
}

func readJSONFile(path string, into interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(into); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func (s *FileStorage) loadBabies() error {
	var babies []*internal.Baby
	if err := readJSONFile(s.babiesFile, &babies); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range babies {
		s.babies[b.ID] = b
	}
	return nil
}

func (s *FileStorage) loadSleepSessions() error {
	var sessions []*internal.SleepSession
	if err := readJSONFile(s.sleepFile, &sessions); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ss := range sessions {
		s.sessions[ss.ID] = ss
		s.babySessions[ss.BabyID] = append(s.babySessions[ss.BabyID], ss)
	}
	for babyID := range s.babySessions {
		list := s.babySessions[babyID]
		sort.Slice(list, func(i, j int) bool {
			return list[i].StartTime.After(list[j].StartTime)
		})
	}
	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) saveBabies() error {
	s.mu.RLock()
	babies := make([]*internal.Baby, 0, len(s.babies))
	for _, b := range s.babies {
		babies = append(babies, b)
	}
	s.mu.RUnlock()
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return atomicWriteFileJSON(s.babiesFile, babies)
}

func (s *FileStorage) saveSleepSessions() error {
	s.mu.RLock()
	sessions := make([]*internal.SleepSession, 0, len(s.sessions))
	for _, ss := range s.sessions {
		sessions = append(sessions, ss)
	}
	s.mu.RUnlock()
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return atomicWriteFileJSON(s.sleepFile, sessions)
}

// saveWorker debounces writes: a burst of signals produces one save once
// the burst has been quiet for saveDelay.
func (s *FileStorage) saveWorker(signal <-chan struct{}, what string, save func() error) {
	timer := time.NewTimer(s.saveDelay)
	defer timer.Stop()

	for {
		select {
		case <-signal:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := save(); err != nil {
				s.logger.Errorf("storage: error saving %s: %v", what, err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Close stops the workers and flushes both files synchronously.
func (s *FileStorage) Close() error {
	s.closeOnce.Do(func() { close(s.shutdownChan) })

	if err := s.saveSleepSessions(); err != nil {
		return err
	}
	return s.saveBabies()
}

// --- BabyRepository ---
func (s *FileStorage) SaveBaby(ctx context.Context, baby *internal.Baby) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *baby
	s.babies[baby.ID] = &cp
	notify(s.saveBabyChan)
	return nil
}

func (s *FileStorage) GetBaby(ctx context.Context, id string) (*internal.Baby, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.babies[id]
	if !ok {
		return nil, internal.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *FileStorage) ListBabies(ctx context.Context) ([]internal.Baby, error) {
	return s.filterBabies(func(*internal.Baby) bool { return true }), nil
}

func (s *FileStorage) ListBabiesByCaregiver(ctx context.Context, caregiverID string) ([]internal.Baby, error) {
	return s.filterBabies(func(b *internal.Baby) bool { return b.CaregiverID == caregiverID }), nil
}

func (s *FileStorage) filterBabies(keep func(*internal.Baby) bool) []internal.Baby {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []internal.Baby{}
	for _, b := range s.babies {
		if keep(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// --- SleepSessionRepository ---
func (s *FileStorage) SaveSleepSession(ctx context.Context, session *internal.SleepSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *session
	s.sessions[cp.ID] = &cp
	list := s.babySessions[cp.BabyID]
	i := sort.Search(len(list), func(i int) bool {
		return list[i].StartTime.Before(cp.StartTime)
	})
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = &cp
	s.babySessions[cp.BabyID] = list
	notify(s.saveSleepChan)
	return nil
}

func (s *FileStorage) ListSleepSessions(ctx context.Context, babyID string) ([]internal.SleepSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.babySessions[babyID]
	out := make([]internal.SleepSession, len(list))
	for i, ss := range list {
		out[i] = *ss
	}
	return out, nil
}

var _ BabyRepository = (*FileStorage)(nil)
var _ SleepSessionRepository = (*FileStorage)(nil)
