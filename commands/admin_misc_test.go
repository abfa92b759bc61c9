package commands

import (
	"strings"
	"testing"

	"github.com/Deeves/TinyMUD/internal/game"
)

func TestKickDisconnectsTargetAndCancelsTheirTrades(t *testing.T) {
	env := newTestEnv(t)
	adminSid, admin, adminConn := joinTestPlayer(t, env, "Admin", "start")
	admin.IsAdmin = true
	targetSid, target, targetConn := joinTestPlayer(t, env, "Target", "start")
	_, bystander, bystanderConn := joinTestPlayer(t, env, "Bystander", "start")

	dispatchAs(env, targetSid, "/trade start Bystander")
	drainOutput(targetConn)
	drainOutput(bystanderConn)

	closed := false
	targetConn.Closer = func() { closed = true }

	dispatchAs(env, adminSid, "/kick Target")

	adminMsgs := drainOutput(adminConn)
	if len(adminMsgs) == 0 || !strings.Contains(adminMsgs[0], "Kicked Target") {
		t.Fatalf("expected the admin to be told the kick succeeded, got %v", adminMsgs)
	}
	targetMsgs := drainOutput(targetConn)
	if len(targetMsgs) == 0 || !strings.Contains(targetMsgs[0], "disconnected by an administrator") {
		t.Fatalf("expected the target to be notified, got %v", targetMsgs)
	}
	if !closed {
		t.Fatal("expected the underlying connection to be closed via Closer")
	}
	if _, ok := env.World.Players[targetSid]; ok {
		t.Fatal("expected the kicked session to be removed from Players")
	}
	if _, _, ok := findTradeLocked(env.World, bystander.UserID); ok {
		t.Fatal("expected the target's open trade to be cancelled by the kick")
	}
	_ = target
}

func TestKickUnknownUserReportsError(t *testing.T) {
	env := newTestEnv(t)
	adminSid, admin, adminConn := joinTestPlayer(t, env, "Admin", "start")
	admin.IsAdmin = true

	dispatchAs(env, adminSid, "/kick Nobody")
	msgs := drainOutput(adminConn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "no such user") {
		t.Fatalf("expected a no-such-user error, got %v", msgs)
	}
}

func TestKickDisconnectedUserReportsError(t *testing.T) {
	env := newTestEnv(t)
	adminSid, admin, adminConn := joinTestPlayer(t, env, "Admin", "start")
	admin.IsAdmin = true
	if _, err := game.CreateUser(env.World, "Offline", "password", ""); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	dispatchAs(env, adminSid, "/kick Offline")
	msgs := drainOutput(adminConn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "is not connected") {
		t.Fatalf("expected a not-connected error, got %v", msgs)
	}
}

func TestSafetyRejectsUnknownLevel(t *testing.T) {
	env := newTestEnv(t)
	adminSid, admin, adminConn := joinTestPlayer(t, env, "Admin", "start")
	admin.IsAdmin = true

	dispatchAs(env, adminSid, "/safety nonsense")
	msgs := drainOutput(adminConn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "usage:") {
		t.Fatalf("expected a usage error, got %v", msgs)
	}
	if env.World.SafetyLevel != game.SafetyPG13 {
		t.Fatalf("safety level should be unchanged, got %v", env.World.SafetyLevel)
	}
}

func TestSafetySetsLevel(t *testing.T) {
	env := newTestEnv(t)
	adminSid, admin, adminConn := joinTestPlayer(t, env, "Admin", "start")
	admin.IsAdmin = true

	dispatchAs(env, adminSid, "/safety r")
	msgs := drainOutput(adminConn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "Safety level set to R") {
		t.Fatalf("expected a confirmation, got %v", msgs)
	}
	if env.World.SafetyLevel != game.SafetyR {
		t.Fatalf("SafetyLevel = %v, want %v", env.World.SafetyLevel, game.SafetyR)
	}
}
