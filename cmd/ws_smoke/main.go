package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"strings"
	"time"

	"kanban_board/internal/backend"
	"kanban_board/internal/domain"
	"kanban_board/internal/logger"
	"kanban_board/internal/realtime"

	"github.com/gorilla/websocket"
)

// Signs in an admin and a target user, opens the target's realtime socket and
// toggles the target's admin flag twice. Each toggle must arrive as USER_UPDATED.
func main() {
	base := flag.String("url", "http://127.0.0.1:8080", "server base url")
	adminEmail := flag.String("admin-email", "tester@example.com", "admin account (see create_test_user -admin)")
	adminPassword := flag.String("admin-password", "tester123", "admin password")
	targetEmail := flag.String("target-email", "smoke@example.com", "target account, created when missing")
	targetPassword := flag.String("target-password", "smoke123", "target password")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin := backend.New(backend.Options{BaseURL: *base})
	if _, err := admin.SignInWithPassword(ctx, *adminEmail, *adminPassword); err != nil {
		logger.Fatal("admin sign in", "error", err)
	}

	target := backend.New(backend.Options{BaseURL: *base})
	sess, err := target.SignInWithPassword(ctx, *targetEmail, *targetPassword)
	if err != nil {
		sess, err = target.SignUp(ctx, *targetEmail, *targetPassword, map[string]string{domain.MetaFirstName: "Smoke"})
		if err != nil {
			logger.Fatal("target sign up", "error", err)
		}
	}

	wsURL := strings.Replace(strings.TrimRight(*base, "/"), "http", "ws", 1) +
		"/realtime/v1?token=" + url.QueryEscape(sess.AccessToken)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		logger.Fatal("dial realtime", "error", err)
	}
	defer conn.Close()

	read := func() realtime.Message {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			logger.Fatal("read realtime", "error", err)
		}
		var msg realtime.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			logger.Fatal("decode realtime", "error", err, "payload", string(raw))
		}
		return msg
	}

	if msg := read(); msg.Type != realtime.MsgReady {
		logger.Fatal("expected ready", "got", msg.Type)
	}

	for i := 0; i < 2; i++ {
		p, err := admin.GetProfile(ctx, sess.User.ID)
		if err != nil {
			logger.Fatal("read target profile", "error", err)
		}
		if _, err := admin.SetAdmin(ctx, sess.User.ID, !p.IsAdmin); err != nil {
			logger.Fatal("toggle admin", "error", err)
		}
		msg := read()
		if msg.Type != realtime.MsgAuth || msg.Event != domain.EventUserUpdated {
			logger.Fatal("unexpected realtime message", "type", msg.Type, "event", msg.Event)
		}
		fmt.Printf("toggle %d: got %s\n", i+1, msg.Event)
	}

	fmt.Println("smoke test finished")
}
