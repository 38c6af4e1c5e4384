// Package board mirrors the signed-in user's tasks. Every mutation is written to the
// backend first and applied locally only when the write succeeds.
package board

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"kanban_board/internal/domain"
	"kanban_board/internal/logger"
)

// TaskBackend is the part of the backend client the store needs.
type TaskBackend interface {
	ListTasks(ctx context.Context, userID string, ascending bool) ([]domain.Task, error)
	InsertTask(ctx context.Context, t domain.Task) (*domain.Task, error)
	UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Lane is one status column of the board.
type Lane struct {
	Status domain.Status
	Label  string
	Tasks  []domain.Task
}

type Store struct {
	backend TaskBackend
	log     *slog.Logger

	mu      sync.RWMutex
	user    *domain.CurrentUser
	tasks   []domain.Task
	gen     uint64
	loading bool
}

func NewStore(backend TaskBackend, log *slog.Logger) *Store {
	if log == nil {
		log = logger.Get()
	}
	return &Store{backend: backend, log: log.With("component", "board")}
}

// SetUser switches the board to u and fetches its tasks, newest first. nil clears the
// board at once. A fetch for a user that is no longer current is thrown away.
func (s *Store) SetUser(ctx context.Context, u *domain.CurrentUser) error {
	s.mu.Lock()
	s.gen++
	if u == nil {
		s.user = nil
		s.tasks = nil
		s.loading = false
		s.mu.Unlock()
		return nil
	}
	cp := *u
	s.user = &cp
	s.tasks = nil
	s.loading = true
	gen := s.gen
	s.mu.Unlock()

	return s.fetch(ctx, gen, cp.ID)
}

// Refresh refetches the current user's tasks.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return nil
	}
	s.gen++
	gen := s.gen
	userID := s.user.ID
	s.loading = true
	s.mu.Unlock()

	return s.fetch(ctx, gen, userID)
}

func (s *Store) fetch(ctx context.Context, gen uint64, userID string) error {
	tasks, err := s.backend.ListTasks(ctx, userID, false)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return nil
	}
	s.loading = false
	if err != nil {
		s.log.Error("failed to fetch tasks", "error", err, "user_id", userID)
		return fmt.Errorf("fetch tasks: %w", err)
	}
	s.tasks = tasks
	return nil
}

func (s *Store) currentUserID() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return "", domain.ErrUnauthorized
	}
	return s.user.ID, nil
}

// Add creates a task. An empty status means upcoming. The stored row goes to the
// head of the list.
func (s *Store) Add(ctx context.Context, title string, status domain.Status) (*domain.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.ErrEmptyTitle
	}
	if status == "" {
		status = domain.StatusUpcoming
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	userID, err := s.currentUserID()
	if err != nil {
		return nil, err
	}

	created, err := s.backend.InsertTask(ctx, domain.Task{UserID: userID, Title: title, Status: status})
	if err != nil {
		s.log.Error("failed to add task", "error", err)
		return nil, err
	}

	s.mu.Lock()
	if s.user != nil && s.user.ID == userID {
		s.tasks = append([]domain.Task{*created}, s.tasks...)
	}
	s.mu.Unlock()
	return created, nil
}

// Move changes only the status of the task.
func (s *Store) Move(ctx context.Context, id string, status domain.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	patch := domain.TaskPatch{Status: &status}
	if _, err := s.backend.UpdateTask(ctx, id, patch); err != nil {
		s.log.Error("failed to move task", "error", err, "task_id", id)
		return err
	}
	s.apply(id, patch)
	return nil
}

// Rename changes only the title of the task.
func (s *Store) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.ErrEmptyTitle
	}
	return s.Update(ctx, id, domain.TaskPatch{Title: &title})
}

// Update writes an arbitrary patch and mirrors it locally on success.
func (s *Store) Update(ctx context.Context, id string, patch domain.TaskPatch) error {
	if patch.Status != nil && !patch.Status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, *patch.Status)
	}
	if patch.Empty() {
		return nil
	}
	if _, err := s.backend.UpdateTask(ctx, id, patch); err != nil {
		s.log.Error("failed to update task", "error", err, "task_id", id)
		return err
	}
	s.apply(id, patch)
	return nil
}

func (s *Store) apply(id string, patch domain.TaskPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i] = patch.Apply(s.tasks[i])
			return
		}
	}
}

// Delete removes the task remotely, then locally. Ids not on the board are left alone.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.backend.DeleteTask(ctx, id); err != nil {
		s.log.Error("failed to delete task", "error", err, "task_id", id)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
			break
		}
	}
	return nil
}

// Tasks returns a copy of the list, newest first.
func (s *Store) Tasks() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) ByStatus(status domain.Status) []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Task
	for _, t := range s.tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// Lanes partitions the board into the four status lanes in board order.
func (s *Store) Lanes() []Lane {
	statuses := domain.Statuses()
	lanes := make([]Lane, len(statuses))
	for i, st := range statuses {
		lanes[i] = Lane{Status: st, Label: st.Label(), Tasks: s.ByStatus(st)}
	}
	return lanes
}

// Owner is the header identity: display name and initials, or the guest pair.
func (s *Store) Owner() (name, initials string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.Guest()
	}
	return s.user.DisplayName(), s.user.Initials
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Resolve finds a task by full id or unique id prefix.
func (s *Store) Resolve(ref string) (domain.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.Task{}, domain.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tasks {
		if t.ID == ref {
			return t, nil
		}
	}

	var match *domain.Task
	for i := range s.tasks {
		t := &s.tasks[i]
		if strings.HasPrefix(t.ID, ref) {
			if match != nil {
				return domain.Task{}, fmt.Errorf("task %q is ambiguous", ref)
			}
			match = t
		}
	}
	if match == nil {
		return domain.Task{}, fmt.Errorf("task %q: %w", ref, domain.ErrNotFound)
	}
	return *match, nil
}
