package storage

import (
	"sort"
	"sync"

	"github.com/mtthwcarey/catalogger/internal/models"
)

type RunStore struct {
	runs map[string]*models.RunSession
	mu   sync.RWMutex
}

func New() *RunStore {
	return &RunStore{
		runs: make(map[string]*models.RunSession),
	}
}

func (s *RunStore) Get(runID string) (*models.RunSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, exists := s.runs[runID]
	return run, exists
}

func (s *RunStore) Set(runID string, run *models.RunSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[runID] = run
}

// List returns all runs, newest first.
func (s *RunStore) List() []*models.RunSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.RunSession, 0, len(s.runs))
	for _, run := range s.runs {
		result = append(result, run)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (s *RunStore) Delete(runID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.runs[runID]
	delete(s.runs, runID)
	return exists
}
