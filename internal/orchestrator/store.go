package orchestrator

import (
	"fmt"
	"sort"
	"sync"

	"github.com/zengent/codelens/pkg/shared/errors"
)

// ProjectStore persists scan projects. Implementations must be safe for
// concurrent use: the pipeline goroutine writes while pollers read.
type ProjectStore interface {
	Get(projectID string) (*Project, error)
	Create(project *Project) error
	Update(project *Project) error
	List() ([]*Project, error)
}

// MemoryStore is the in-process ProjectStore. All accessors work on copies,
// callers never observe a project mid-mutation.
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[string]*Project
}

// NewMemoryStore creates an empty in-memory project store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{projects: make(map[string]*Project)}
}

// Get implements ProjectStore.
func (s *MemoryStore) Get(projectID string) (*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, ok := s.projects[projectID]
	if !ok {
		return nil, errors.NewNotFoundError(projectID)
	}
	return project.Clone(), nil
}

// Create implements ProjectStore.
func (s *MemoryStore) Create(project *Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.projects[project.ID]; exists {
		return fmt.Errorf("project %q already exists", project.ID)
	}
	s.projects[project.ID] = project.Clone()
	return nil
}

// Update implements ProjectStore.
func (s *MemoryStore) Update(project *Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.projects[project.ID]; !exists {
		return errors.NewNotFoundError(project.ID)
	}
	s.projects[project.ID] = project.Clone()
	return nil
}

// List implements ProjectStore. Projects come back ordered by submission
// time, then ID.
func (s *MemoryStore) List() ([]*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects := make([]*Project, 0, len(s.projects))
	for _, project := range s.projects {
		projects = append(projects, project.Clone())
	}
	sort.Slice(projects, func(i, j int) bool {
		if !projects[i].SubmittedAt.Equal(projects[j].SubmittedAt) {
			return projects[i].SubmittedAt.Before(projects[j].SubmittedAt)
		}
		return projects[i].ID < projects[j].ID
	})
	return projects, nil
}
