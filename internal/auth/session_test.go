package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"go-dialog/internal/config"
	redisdb "go-dialog/internal/redis"
)

// Needs a reachable Redis; set TEST_REDIS_ADDR to run.
func TestSessionSetGetDelete(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis session test")
	}
	cfg := &config.Config{}
	cfg.Redis.Addr = addr
	cfg.Redis.DB = 15
	rdb := redisdb.NewClient(cfg)

	ctx := context.Background()
	userId := uint(12345)
	token := "session_test_token"
	duration := 2 * time.Second

	// Set session
	if err := SetSession(ctx, rdb, userId, token, duration); err != nil {
		t.Fatalf("SetSession failed: %v", err)
	}

	// Get session
	gotToken, err := GetSession(ctx, rdb, userId)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if gotToken != token {
		t.Errorf("expected token %q, got %q", token, gotToken)
	}

	// Delete session
	if err := DeleteSession(ctx, rdb, userId); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}

	// Get session after deletion
	_, err = GetSession(ctx, rdb, userId)
	if err == nil {
		t.Errorf("expected error for deleted session, got nil")
	}
}
