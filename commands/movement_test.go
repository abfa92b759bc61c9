package commands

import (
	"strings"
	"testing"

	"github.com/Deeves/TinyMUD/internal/game"
)

func TestGoMovesPlayerAndNotifiesBothRooms(t *testing.T) {
	env := newTestEnv(t)
	if _, err := game.CreateRoom(env.World, "second", "Second Room", "A bustling plaza."); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	env.World.Rooms["start"].Doors["east"] = "second"

	moverSid, _, moverConn := joinTestPlayer(t, env, "Mover", "start")
	_, _, watcherConn := joinTestPlayer(t, env, "Watcher", "start")
	_, _, greeterConn := joinTestPlayer(t, env, "Greeter", "second")
	drainOutput(moverConn)
	drainOutput(watcherConn)
	drainOutput(greeterConn)

	if dispatchAs(env, moverSid, "/go east") {
		t.Fatal("go should not close the connection")
	}

	player, ok := env.World.Players[moverSid]
	if !ok || player.RoomID != "second" {
		t.Fatalf("expected the mover to end up in room 'second', got %+v", player)
	}
	if env.World.Rooms["start"].Players[string(moverSid)] {
		t.Fatal("the mover should have been removed from the origin room's player set")
	}
	if !env.World.Rooms["second"].Players[string(moverSid)] {
		t.Fatal("the mover should have been added to the destination room's player set")
	}

	watcherMsgs := drainOutput(watcherConn)
	if len(watcherMsgs) == 0 || !strings.Contains(watcherMsgs[0], "leaves through east") {
		t.Fatalf("expected the origin room to see a leave message, got %v", watcherMsgs)
	}
	greeterMsgs := drainOutput(greeterConn)
	if len(greeterMsgs) == 0 || !strings.Contains(greeterMsgs[0], "arrives") {
		t.Fatalf("expected the destination room to see an arrival message, got %v", greeterMsgs)
	}
	moverMsgs := drainOutput(moverConn)
	if len(moverMsgs) == 0 || !strings.Contains(moverMsgs[0], "Second Room") {
		t.Fatalf("expected the mover to see the new room's description, got %v", moverMsgs)
	}
}

func TestGoUnknownDoorReportsError(t *testing.T) {
	env := newTestEnv(t)
	sid, _, conn := joinTestPlayer(t, env, "Lost", "start")
	drainOutput(conn)

	dispatchAs(env, sid, "/go nowhere")
	msgs := drainOutput(conn)
	if len(msgs) == 0 {
		t.Fatal("expected an error reply for a nonexistent door")
	}
}

func TestGoWithNoArgumentShowsUsage(t *testing.T) {
	env := newTestEnv(t)
	sid, _, conn := joinTestPlayer(t, env, "Idler", "start")

	dispatchAs(env, sid, "/go")
	msgs := drainOutput(conn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "usage:") {
		t.Fatalf("expected a usage error, got %v", msgs)
	}
}

func TestGoRespectsDoorLock(t *testing.T) {
	env := newTestEnv(t)
	if _, err := game.CreateRoom(env.World, "vault", "Vault", "A locked chamber."); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	env.World.Rooms["start"].Doors["north"] = "vault"
	env.World.Rooms["start"].DoorLocks["north"] = game.LockPolicy{AllowIDs: []game.EntityID{game.NewEntityID()}}

	sid, _, conn := joinTestPlayer(t, env, "Outsider", "start")
	drainOutput(conn)

	dispatchAs(env, sid, "/go north")
	msgs := drainOutput(conn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "locked") {
		t.Fatalf("expected a locked-door error, got %v", msgs)
	}
	if env.World.Players[sid].RoomID != "start" {
		t.Fatal("a denied traversal must not move the player")
	}
}
