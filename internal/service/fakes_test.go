package service

import (
	"context"
	"sync"
	"time"

	"kanban_board/internal/domain"
	"kanban_board/internal/memstore"
)

func seededDB() *memstore.DB {
	db := memstore.New()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	db.SeedProfile(domain.Profile{ID: "admin", FirstName: "Root", IsAdmin: true, CreatedAt: base})
	db.SeedProfile(domain.Profile{ID: "alice", FirstName: "Alice", CreatedAt: base.Add(time.Hour)})
	db.SeedProfile(domain.Profile{ID: "bob", FirstName: "Bob", CreatedAt: base.Add(2 * time.Hour)})
	return db
}

type published struct {
	UserID string
	Event  domain.AuthEvent
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(_ context.Context, userID string, event domain.AuthEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{userID, event})
	return nil
}

// revokeRecorder notes RevokeAll calls; the cascade removes the rows right after.
type revokeRecorder struct {
	*memstore.Sessions
	revoked []string
}

func (r *revokeRecorder) RevokeAll(ctx context.Context, userID string) error {
	r.revoked = append(r.revoked, userID)
	return r.Sessions.RevokeAll(ctx, userID)
}
