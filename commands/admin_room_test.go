package commands

import (
	"strings"
	"testing"

	"github.com/Deeves/TinyMUD/internal/game"
)

func TestRoomCreate(t *testing.T) {
	env := newTestEnv(t)
	adminSid, admin, adminConn := joinTestPlayer(t, env, "Architect", "start")
	admin.IsAdmin = true
	drainOutput(adminConn)

	dispatchAs(env, adminSid, "/room create cellar | A damp stone cellar.")

	msgs := drainOutput(adminConn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "Created room cellar") {
		t.Fatalf("expected a room-created confirmation, got %v", msgs)
	}
	if _, ok := env.World.Rooms["cellar"]; !ok {
		t.Fatal("expected the cellar room to exist")
	}
}

func TestRoomCreateDuplicateIsRejected(t *testing.T) {
	env := newTestEnv(t)
	adminSid, admin, adminConn := joinTestPlayer(t, env, "Architect", "start")
	admin.IsAdmin = true
	drainOutput(adminConn)

	dispatchAs(env, adminSid, "/room create start | Again.")
	msgs := drainOutput(adminConn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "already exists") {
		t.Fatalf("expected an already-exists error, got %v", msgs)
	}
}

func TestRoomSetdesc(t *testing.T) {
	env := newTestEnv(t)
	adminSid, admin, adminConn := joinTestPlayer(t, env, "Architect", "start")
	admin.IsAdmin = true
	drainOutput(adminConn)

	dispatchAs(env, adminSid, "/room setdesc start | A freshly repainted room.")
	msgs := drainOutput(adminConn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "Description updated") {
		t.Fatalf("expected a description-updated confirmation, got %v", msgs)
	}
	if env.World.Rooms["start"].Description != "A freshly repainted room." {
		t.Fatalf("Description = %q, want the new text", env.World.Rooms["start"].Description)
	}
}

func TestRoomAdddoorAndRemovedoor(t *testing.T) {
	env := newTestEnv(t)
	if _, err := game.CreateRoom(env.World, "garden", "Garden", "A quiet garden."); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	adminSid, admin, adminConn := joinTestPlayer(t, env, "Architect", "start")
	admin.IsAdmin = true
	drainOutput(adminConn)

	dispatchAs(env, adminSid, "/room adddoor west | garden")
	msgs := drainOutput(adminConn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "Door added") {
		t.Fatalf("expected a door-added confirmation, got %v", msgs)
	}
	if env.World.Rooms["start"].Doors["west"] != "garden" {
		t.Fatal("expected a west door from start to garden")
	}
	if env.World.Rooms["garden"].Doors["back"] != "start" {
		t.Fatal("expected a reciprocal 'back' door from garden to start")
	}

	dispatchAs(env, adminSid, "/room removedoor west")
	msgs = drainOutput(adminConn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "Door removed") {
		t.Fatalf("expected a door-removed confirmation, got %v", msgs)
	}
	if _, ok := env.World.Rooms["start"].Doors["west"]; ok {
		t.Fatal("expected the west door to be gone")
	}
	if _, ok := env.World.Rooms["garden"].Doors["back"]; ok {
		t.Fatal("expected the reciprocal door to be gone too")
	}
}

func TestRoomSetstairs(t *testing.T) {
	env := newTestEnv(t)
	if _, err := game.CreateRoom(env.World, "attic", "Attic", "A dusty attic."); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	adminSid, admin, adminConn := joinTestPlayer(t, env, "Architect", "start")
	admin.IsAdmin = true
	drainOutput(adminConn)

	dispatchAs(env, adminSid, "/room setstairs attic | start")
	msgs := drainOutput(adminConn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "Stairs set") {
		t.Fatalf("expected a stairs-set confirmation, got %v", msgs)
	}
	if env.World.Rooms["start"].StairsUpTo != "attic" {
		t.Fatal("expected start's stairs up to lead to attic")
	}
	if env.World.Rooms["attic"].StairsDownTo != "start" {
		t.Fatal("expected attic's stairs down to lead to start")
	}
}

func TestRoomLockdoor(t *testing.T) {
	env := newTestEnv(t)
	if _, err := game.CreateRoom(env.World, "vault", "Vault", "A secure vault."); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	adminSid, admin, adminConn := joinTestPlayer(t, env, "Architect", "start")
	admin.IsAdmin = true
	env.World.Rooms["start"].Doors["north"] = "vault"
	drainOutput(adminConn)
	_, ally, _ := joinTestPlayer(t, env, "Ally", "start")

	dispatchAs(env, adminSid, "/room lockdoor north | Ally")
	msgs := drainOutput(adminConn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "Door locked") {
		t.Fatalf("expected a door-locked confirmation, got %v", msgs)
	}
	policy, ok := env.World.Rooms["start"].DoorLocks["north"]
	if !ok || len(policy.AllowIDs) != 1 || policy.AllowIDs[0] != ally.UserID {
		t.Fatalf("expected a lock policy allowing only Ally, got %+v", policy)
	}
}

func TestRoomUnknownSubcommand(t *testing.T) {
	env := newTestEnv(t)
	adminSid, admin, adminConn := joinTestPlayer(t, env, "Architect", "start")
	admin.IsAdmin = true
	drainOutput(adminConn)

	dispatchAs(env, adminSid, "/room teleport start")
	msgs := drainOutput(adminConn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "unknown /room subcommand") {
		t.Fatalf("expected an unknown-subcommand error, got %v", msgs)
	}
}

func TestRoomIsAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	sid, user, conn := joinTestPlayer(t, env, "Commoner", "start")
	user.IsAdmin = false

	dispatchAs(env, sid, "/room create nope | nope")
	msgs := drainOutput(conn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "not permitted") {
		t.Fatalf("expected a permission rejection, got %v", msgs)
	}
}
