package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"kanban_board/internal/db"
	"kanban_board/internal/domain"
	"kanban_board/internal/logger"
	"kanban_board/internal/repository"
	"kanban_board/internal/service"
)

func main() {
	email := flag.String("email", "tester@example.com", "account email")
	password := flag.String("password", "tester123", "account password")
	first := flag.String("first", "Test", "first name")
	last := flag.String("last", "User", "last name")
	admin := flag.Bool("admin", false, "grant admin rights")
	flag.Parse()

	// expects DATABASE_URL and JWT_SECRET env vars
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Fatal("JWT_SECRET not set")
	}

	pool := db.Connect(dsn)
	defer pool.Close()
	ctx := context.Background()

	profiles := repository.NewProfileRepository(pool)
	auth := service.NewAuthService(
		repository.NewAccountRepository(pool),
		repository.NewSessionRepository(pool),
		service.NewJWT(secret, time.Hour),
		service.NewAuditService(repository.NewAuditRepository(pool)),
		24*time.Hour,
	)
	caller := service.Caller{UserAgent: "create_test_user"}

	sess, err := auth.SignUp(ctx, caller, service.SignUpInput{
		Email:    *email,
		Password: *password,
		Metadata: map[string]string{domain.MetaFirstName: *first, domain.MetaLastName: *last},
	})
	switch {
	case errors.Is(err, domain.ErrEmailTaken):
		logger.Info("user already exists, signing in", "email", *email)
		sess, err = auth.SignInWithPassword(ctx, caller, *email, *password)
		if err != nil {
			logger.Fatal("sign in failed", "error", err)
		}
	case err != nil:
		logger.Fatal("create user failed", "error", err)
	default:
		logger.Info("user created", "id", sess.User.ID)
	}

	if *admin {
		if _, err := profiles.SetAdmin(ctx, sess.User.ID, true); err != nil {
			logger.Fatal("grant admin failed", "error", err)
		}
	}

	// verify the trigger materialized the profile
	p, err := profiles.GetByID(ctx, sess.User.ID)
	if err != nil {
		logger.Fatal("get profile failed", "error", err)
	}
	logger.Info("fetched profile", "id", p.ID, "email", p.Email, "first_name", p.FirstName, "is_admin", p.IsAdmin)
	logger.Info("token issued", "access_token", sess.AccessToken, "expires_at", sess.ExpiresAt)
}
