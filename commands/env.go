package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/Deeves/TinyMUD/internal/game"
)

// Env bundles everything a command handler needs beyond the line itself:
// the shared world, the persistence façade, rate limiting, tick
// configuration (shared with the scheduler so `/npc generate` and AI-backed
// commands honor the same AI timeout/truncation), and the AI adapter. One
// Env is constructed in cmd/tinymud and threaded through every connection.
type Env struct {
	World   *game.World
	Persist *game.Persistence
	Limiter *game.RateLimiter
	Cfg     game.TickConfig
	Adapter game.AIAdapter
	AIMaxResponseLen int
	AITimeout        time.Duration
	MaxMessageLen    int
	Log     *slog.Logger
	Ctx     context.Context

	// nowFunc is overridden in tests; defaults to time.Now (teacher's
	// factory-variable seam, server.go).
	nowFunc func() time.Time
}

// Now returns the current time, indirected for test determinism.
func (e *Env) Now() time.Time {
	if e.nowFunc != nil {
		return e.nowFunc()
	}
	return time.Now()
}

// Context is the per-invocation handle passed to a Handler.
type Context struct {
	Env       *Env
	SessionID game.EntityID
	Raw       string
	Arg       string
	Verb      string
	Command   *Command
}

// PlayerLocked returns the acting Player. Callers must already hold
// Env.World's lock (read or write).
func (c *Context) PlayerLocked() (*game.Player, bool) {
	p, ok := c.Env.World.Players[c.SessionID]
	return p, ok
}

// UserLocked returns the acting User. Callers must already hold
// Env.World's lock.
func (c *Context) UserLocked() (*game.User, bool) {
	p, ok := c.PlayerLocked()
	if !ok {
		return nil, false
	}
	u, ok := c.Env.World.Users[p.UserID]
	return u, ok
}

// isAdminLocked reports whether the acting user is an administrator.
// Callers must already hold Env.World's lock.
func (c *Context) isAdminLocked() bool {
	u, ok := c.UserLocked()
	return ok && u.IsAdmin
}

// IsAdmin takes its own read lock to answer the question outside a handler
// that is not otherwise touching the world.
func (c *Context) IsAdmin() bool {
	c.Env.World.RLock()
	defer c.Env.World.RUnlock()
	return c.isAdminLocked()
}

// Reply delivers msg to the acting session only. Never blocks; safe to call
// while holding Env.World's lock.
func (c *Context) Reply(msg string) {
	c.Env.World.Emit(c.SessionID, msg)
}

// ReplyError renders err as a `[color=red]` system line, per §6.2/§7.
func (c *Context) ReplyError(err error) {
	if err == nil {
		return
	}
	c.Reply(errorLine(err.Error()))
}

// BroadcastRoom delivers msg to every other live session in roomID,
// excluding the acting session.
func (c *Context) BroadcastRoom(roomID game.RoomID, msg string) {
	c.Env.World.BroadcastToRoom(roomID, msg, c.SessionID)
}

// Deliver applies a ServiceResult: on handled-but-failed it reports the
// error to the actor; on success it reports every Emits line to the actor
// and every Broadcast to its room. Requests a debounced save if anything
// was mutated successfully.
func (c *Context) Deliver(res game.ServiceResult) {
	if res.Err != nil {
		c.ReplyError(res.Err)
		return
	}
	for _, line := range res.Emits {
		c.Reply(line)
	}
	for _, b := range res.Broadcasts {
		c.BroadcastRoom(b.RoomID, b.Payload)
	}
	if len(res.Emits) > 0 || len(res.Broadcasts) > 0 {
		c.Env.Persist.SaveDebounced(c.Env.World)
	}
}
