package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func TestTokenService_StoreAndResolve(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewTokenService(rdb)
	ctx := context.Background()

	token, err := svc.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if len(token) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(token))
	}

	if err := svc.StoreToken(ctx, token, 42, time.Hour); err != nil {
		t.Fatalf("StoreToken: %v", err)
	}

	uid, err := svc.GetUserIDByToken(ctx, token)
	if err != nil {
		t.Fatalf("GetUserIDByToken: %v", err)
	}
	if uid != 42 {
		t.Fatalf("expected user 42, got %d", uid)
	}

	// expiry
	mr.FastForward(2 * time.Hour)
	if _, err := svc.GetUserIDByToken(ctx, token); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestTokenService_RevokeAllTokensByUser(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewTokenService(rdb)
	ctx := context.Background()

	t1, _ := svc.GenerateToken()
	t2, _ := svc.GenerateToken()
	if err := svc.StoreToken(ctx, t1, 42, time.Hour); err != nil {
		t.Fatalf("StoreToken t1: %v", err)
	}
	if err := svc.StoreToken(ctx, t2, 42, time.Hour); err != nil {
		t.Fatalf("StoreToken t2: %v", err)
	}

	if err := svc.RevokeAllTokensByUser(ctx, 42); err != nil {
		t.Fatalf("RevokeAllTokensByUser: %v", err)
	}
	if _, err := svc.GetUserIDByToken(ctx, t1); err == nil {
		t.Fatalf("t1 should be revoked")
	}
	if _, err := svc.GetUserIDByToken(ctx, t2); err == nil {
		t.Fatalf("t2 should be revoked")
	}
}

func TestAuthService_ExtractToken_BearerBeforeQuery(t *testing.T) {
	a := NewAuthService(nil)

	req, err := http.NewRequest(http.MethodGet, "http://example.com/ws?token=queryToken", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Authorization", "Bearer headerToken")

	if got := a.ExtractToken(req); got != "headerToken" {
		t.Fatalf("expected headerToken, got %q", got)
	}

	req.Header.Del("Authorization")
	if got := a.ExtractToken(req); got != "queryToken" {
		t.Fatalf("expected queryToken, got %q", got)
	}
}
