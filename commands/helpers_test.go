package commands

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/Deeves/TinyMUD/internal/game"
)

// newTestEnv builds an Env around a fresh World with a single "start" room,
// a limiter that never throttles, and a persistence façade rooted in a
// scratch directory: its debounce window is long enough that only the
// critical-moment SaveNow paths (account creation, logout) ever touch disk.
func newTestEnv(t *testing.T) *Env {
	t.Helper()
	world := game.NewWorld()
	if _, err := game.CreateRoom(world, "start", "The Beginning", "A blank, waiting space."); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	statePath := filepath.Join(t.TempDir(), "world.json")
	return &Env{
		World:   world,
		Persist: game.NewPersistence(statePath, time.Hour, log),
		Limiter: game.NewRateLimiter(false, 0, 0),
		Adapter: game.DeterministicFallback{},
		Log:     log,
		Ctx:     context.Background(),
	}
}

// joinTestPlayer registers a fresh user, binds it to a session in roomID,
// and registers its output connection, returning the session id, user, and
// live connection so a test can drain what was emitted to it.
func joinTestPlayer(t *testing.T, env *Env, name, roomID game.RoomID) (game.EntityID, *game.User, *game.Conn) {
	t.Helper()
	user, err := game.CreateUser(env.World, string(name), "password", "")
	if err != nil {
		t.Fatalf("CreateUser(%q): %v", name, err)
	}
	sid := game.NewEntityID()
	env.World.Lock()
	conn := env.World.RegisterConn(sid)
	player := &game.Player{SessionID: sid, UserID: user.UserID, RoomID: roomID}
	env.World.Players[sid] = player
	if room, ok := env.World.Rooms[roomID]; ok {
		room.Players[string(sid)] = true
	}
	env.World.Unlock()
	return sid, user, conn
}

func drainOutput(c *game.Conn) []string {
	var out []string
	for {
		select {
		case msg, ok := <-c.Output:
			if !ok {
				return out
			}
			out = append(out, msg)
		default:
			return out
		}
	}
}
