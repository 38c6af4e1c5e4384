package board

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"kanban_board/internal/domain"
	"kanban_board/internal/logger"
)

type fakeTasks struct {
	mu      sync.Mutex
	rows    map[string][]domain.Task
	seq     int
	failing error
	// gate, when set, blocks ListTasks for that user until closed
	gate map[string]chan struct{}
}

func newFakeTasks() *fakeTasks {
	return &fakeTasks{rows: map[string][]domain.Task{}, gate: map[string]chan struct{}{}}
}

func (f *fakeTasks) ListTasks(_ context.Context, userID string, _ bool) ([]domain.Task, error) {
	f.mu.Lock()
	g := f.gate[userID]
	f.mu.Unlock()
	if g != nil {
		<-g
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing != nil {
		return nil, f.failing
	}
	return append([]domain.Task(nil), f.rows[userID]...), nil
}

func (f *fakeTasks) InsertTask(_ context.Context, t domain.Task) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing != nil {
		return nil, f.failing
	}
	f.seq++
	t.ID = fmt.Sprintf("task-%04d-%s", f.seq, t.UserID)
	t.CreatedAt = time.Date(2025, 1, 1, 0, 0, f.seq, 0, time.UTC)
	f.rows[t.UserID] = append([]domain.Task{t}, f.rows[t.UserID]...)
	return &t, nil
}

func (f *fakeTasks) UpdateTask(_ context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing != nil {
		return nil, f.failing
	}
	for uid, rows := range f.rows {
		for i := range rows {
			if rows[i].ID == id {
				rows[i] = patch.Apply(rows[i])
				f.rows[uid] = rows
				t := rows[i]
				return &t, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTasks) DeleteTask(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing != nil {
		return f.failing
	}
	for uid, rows := range f.rows {
		for i := range rows {
			if rows[i].ID == id {
				f.rows[uid] = append(rows[:i:i], rows[i+1:]...)
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

var ada = &domain.CurrentUser{ID: "ada", FirstName: "Ada", LastName: "Lovelace", Initials: "AL"}

func newSignedIn(t *testing.T, f *fakeTasks) *Store {
	t.Helper()
	s := NewStore(f, logger.Discard())
	if err := s.SetUser(context.Background(), ada); err != nil {
		t.Fatalf("set user: %v", err)
	}
	return s
}

func TestAddPutsTaskAtHeadOnce(t *testing.T) {
	ctx := context.Background()
	s := newSignedIn(t, newFakeTasks())

	for _, st := range append(domain.Statuses(), "") {
		created, err := s.Add(ctx, "  task for "+string(st)+" ", st)
		if err != nil {
			t.Fatalf("add %q: %v", st, err)
		}
		want := st
		if want == "" {
			want = domain.StatusUpcoming
		}
		tasks := s.Tasks()
		if tasks[0].ID != created.ID || tasks[0].Status != want {
			t.Fatalf("head = %+v; want %s with status %s", tasks[0], created.ID, want)
		}
		count := 0
		for _, x := range tasks {
			if x.ID == created.ID {
				count++
			}
		}
		if count != 1 {
			t.Fatalf("task %s appears %d times", created.ID, count)
		}
	}
	if got := s.Tasks()[0].Title; got != "task for" {
		t.Fatalf("title not trimmed: %q", got)
	}
}

func TestAddRejectsAndFailures(t *testing.T) {
	ctx := context.Background()
	f := newFakeTasks()
	s := newSignedIn(t, f)

	if _, err := s.Add(ctx, "   ", ""); !errors.Is(err, domain.ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if _, err := s.Add(ctx, "x", "later"); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	f.failing = errors.New("backend down")
	if _, err := s.Add(ctx, "x", ""); err == nil {
		t.Fatal("expected remote failure to be returned")
	}
	if n := len(s.Tasks()); n != 0 {
		t.Fatalf("failed add changed local state: %d tasks", n)
	}

	guest := NewStore(f, logger.Discard())
	if _, err := guest.Add(ctx, "x", ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized when signed out, got %v", err)
	}
}

func TestDeleteUnknownIsLocalNoOp(t *testing.T) {
	ctx := context.Background()
	f := newFakeTasks()
	s := newSignedIn(t, f)
	a, _ := s.Add(ctx, "a", "")
	b, _ := s.Add(ctx, "b", domain.StatusDone)
	before := s.Tasks()

	// remote says not found
	if err := s.Delete(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	assertSame(t, before, s.Tasks())

	// remote succeeds for a row this board never loaded
	f.mu.Lock()
	f.rows["ada"] = append(f.rows["ada"], domain.Task{ID: "elsewhere", UserID: "ada"})
	f.mu.Unlock()
	if err := s.Delete(ctx, "elsewhere"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	assertSame(t, before, s.Tasks())

	f.failing = errors.New("boom")
	if err := s.Delete(ctx, a.ID); err == nil {
		t.Fatal("expected failure")
	}
	assertSame(t, before, s.Tasks())

	f.failing = nil
	if err := s.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if tasks := s.Tasks(); len(tasks) != 1 || tasks[0].ID != b.ID {
		t.Fatalf("unexpected tasks after delete: %+v", tasks)
	}
}

func TestMoveChangesOnlyStatus(t *testing.T) {
	ctx := context.Background()
	f := newFakeTasks()
	s := newSignedIn(t, f)
	orig, _ := s.Add(ctx, "keep me", "")

	for _, st := range domain.Statuses() {
		if err := s.Move(ctx, orig.ID, st); err != nil {
			t.Fatalf("move to %s: %v", st, err)
		}
		got, err := s.Resolve(orig.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != st || got.Title != orig.Title || !got.CreatedAt.Equal(orig.CreatedAt) || got.UserID != orig.UserID {
			t.Fatalf("move to %s changed more than status: %+v vs %+v", st, got, orig)
		}
	}

	if err := s.Move(ctx, orig.ID, "sideways"); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	f.failing = errors.New("boom")
	if err := s.Move(ctx, orig.ID, domain.StatusUpcoming); err == nil {
		t.Fatal("expected failure")
	}
	if got, _ := s.Resolve(orig.ID); got.Status != domain.StatusDone {
		t.Fatalf("failed move changed local status to %s", got.Status)
	}
}

func TestRename(t *testing.T) {
	ctx := context.Background()
	s := newSignedIn(t, newFakeTasks())
	task, _ := s.Add(ctx, "old", domain.StatusInReview)

	if err := s.Rename(ctx, task.ID, " "); !errors.Is(err, domain.ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if err := s.Rename(ctx, task.ID, " new "); err != nil {
		t.Fatalf("rename: %v", err)
	}
	got, _ := s.Resolve(task.ID)
	if got.Title != "new" || got.Status != domain.StatusInReview {
		t.Fatalf("unexpected task after rename: %+v", got)
	}
}

func TestSignOutClearsSynchronouslyAndDropsPendingFetch(t *testing.T) {
	ctx := context.Background()
	f := newFakeTasks()
	f.rows["ada"] = []domain.Task{{ID: "t1", UserID: "ada", Title: "stale"}}
	gate := make(chan struct{})
	f.gate["ada"] = gate

	s := NewStore(f, logger.Discard())
	done := make(chan error, 1)
	go func() { done <- s.SetUser(ctx, ada) }()

	// wait until the fetch is in flight
	deadline := time.Now().Add(2 * time.Second)
	for !s.Loading() {
		if time.Now().After(deadline) {
			t.Fatal("fetch never started")
		}
		time.Sleep(time.Millisecond)
	}

	if err := s.SetUser(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if len(s.Tasks()) != 0 || s.Loading() {
		t.Fatal("sign-out must clear tasks synchronously")
	}
	if name, initials := s.Owner(); name != "GUEST" || initials != "G" {
		t.Fatalf("owner = %s/%s; want GUEST/G", name, initials)
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if n := len(s.Tasks()); n != 0 {
		t.Fatalf("pending fetch repopulated %d tasks after sign-out", n)
	}
}

func TestSwitchingUsersDiscardsStaleFetch(t *testing.T) {
	ctx := context.Background()
	f := newFakeTasks()
	f.rows["ada"] = []domain.Task{{ID: "a1", UserID: "ada"}}
	f.rows["bob"] = []domain.Task{{ID: "b1", UserID: "bob"}}
	gate := make(chan struct{})
	f.gate["ada"] = gate

	s := NewStore(f, logger.Discard())
	done := make(chan error, 1)
	go func() { done <- s.SetUser(ctx, ada) }()
	for !s.Loading() {
		time.Sleep(time.Millisecond)
	}

	bob := &domain.CurrentUser{ID: "bob", FirstName: "Bob", Initials: "BU"}
	if err := s.SetUser(ctx, bob); err != nil {
		t.Fatal(err)
	}
	close(gate)
	<-done

	tasks := s.Tasks()
	if len(tasks) != 1 || tasks[0].ID != "b1" {
		t.Fatalf("expected bob's tasks only, got %+v", tasks)
	}
}

func TestFetchFailureLeavesEmptyBoard(t *testing.T) {
	f := newFakeTasks()
	f.failing = errors.New("down")
	s := NewStore(f, logger.Discard())
	if err := s.SetUser(context.Background(), ada); err == nil {
		t.Fatal("expected fetch error")
	}
	if s.Loading() || len(s.Tasks()) != 0 {
		t.Fatal("expected an empty, settled board")
	}
	if name, _ := s.Owner(); name != "ADA LOVELACE" {
		t.Fatalf("owner = %q", name)
	}
}

func TestLanesAndResolve(t *testing.T) {
	ctx := context.Background()
	s := newSignedIn(t, newFakeTasks())
	_, _ = s.Add(ctx, "u", domain.StatusUpcoming)
	_, _ = s.Add(ctx, "p", domain.StatusInProgress)
	d, _ := s.Add(ctx, "d", domain.StatusDone)

	lanes := s.Lanes()
	wantLabels := []string{"UPCOMING", "ONGOING", "COMPLETED", "ARCHIVED"}
	for i, l := range lanes {
		if l.Label != wantLabels[i] {
			t.Fatalf("lane %d label = %s", i, l.Label)
		}
	}
	if len(lanes[0].Tasks) != 1 || len(lanes[2].Tasks) != 0 || lanes[3].Tasks[0].ID != d.ID {
		t.Fatalf("unexpected lanes: %+v", lanes)
	}

	got, err := s.Resolve("task-0003")
	if err != nil || got.ID != d.ID {
		t.Fatalf("prefix resolve: %v %+v", err, got)
	}
	if _, err := s.Resolve("task-"); err == nil {
		t.Fatal("expected ambiguity error")
	}
	if _, err := s.Resolve("nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func assertSame(t *testing.T, want, got []domain.Task) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("len = %d; want %d", len(got), len(want))
	}
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("task %d = %+v; want %+v", i, got[i], want[i])
		}
	}
}

func TestResolvePrefersExactID(t *testing.T) {
	f := newFakeTasks()
	f.rows["ada"] = []domain.Task{
		{ID: "abc-1", UserID: "ada", Title: "one"},
		{ID: "abc-2", UserID: "ada", Title: "two"},
		{ID: "abc", UserID: "ada", Title: "exact"},
	}
	s := newSignedIn(t, f)

	got, err := s.Resolve("abc")
	if err != nil || got.Title != "exact" {
		t.Fatalf("Resolve(abc) = %+v, %v; want the exact id", got, err)
	}
	if _, err := s.Resolve("abc-"); err == nil {
		t.Fatal("expected ambiguity for a shared prefix")
	}
}
