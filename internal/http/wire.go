package http

import (
	"context"

	"kanban_board/internal/config"
	"kanban_board/internal/http/handlers"
	"kanban_board/internal/realtime"
	"kanban_board/internal/service"

	redis "github.com/redis/go-redis/v9"
)

// Stores are the persistence collaborators, Postgres repositories in production.
type Stores struct {
	Accounts service.AccountStore
	Sessions service.SessionStore
	Profiles service.ProfileStore
	Tasks    service.TaskStore
	Audit    service.AuditStore
}

// NewDeps wires the services over the stores. Auth events go through Redis when rdb is set,
// straight to the local hub otherwise.
func NewDeps(cfg *config.Config, st Stores, db handlers.Pinger, rdb *redis.Client) (Deps, *realtime.RedisBroker) {
	hub := realtime.NewHub()

	var (
		publisher service.Publisher = hub
		broker    *realtime.RedisBroker
		redisPing handlers.Pinger
	)
	if rdb != nil {
		broker = realtime.NewRedisBroker(rdb, hub)
		publisher = broker
		redisPing = handlers.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	audit := service.NewAuditService(st.Audit)
	jwt := service.NewJWT(cfg.JWTSecret, cfg.AccessTokenTTL)
	h := handlers.NewHandler(
		service.NewAuthService(st.Accounts, st.Sessions, jwt, audit, cfg.RefreshTokenTTL),
		service.NewProfileService(st.Profiles, st.Sessions, publisher, audit),
		service.NewTaskService(st.Tasks, audit),
		audit,
	)

	return Deps{
		Handler: h,
		Health:  handlers.NewHealthHandler(db, redisPing, cfg.AppVersion),
		Hub:     hub,
		Redis:   rdb,
		Config:  cfg,
	}, broker
}
