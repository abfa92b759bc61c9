package commands

import (
	"fmt"
	"strings"

	"github.com/Deeves/TinyMUD/internal/game"
)

var _ = Define(Definition{
	Name:        "kick",
	Usage:       "/kick <name>",
	Description: "Disconnect a player.",
	AdminOnly:   true,
}, func(c *Context) bool {
	name := strings.TrimSpace(c.Arg)
	c.Env.World.Lock()
	defer c.Env.World.Unlock()

	target, ok := c.Env.World.UserByName(name)
	if !ok {
		c.Reply(errorLine("no such user."))
		return false
	}
	sid, ok := c.Env.World.ActiveSessionForUser(target.UserID)
	if !ok {
		c.Reply(errorLine(name + " is not connected."))
		return false
	}
	c.Env.World.Emit(sid, errorLine("You have been disconnected by an administrator."))
	CancelTradesForUser(c.Env.World, target.UserID)
	if p, ok := c.Env.World.Players[sid]; ok {
		if room, ok := c.Env.World.Rooms[p.RoomID]; ok {
			delete(room.Players, string(sid))
		}
	}
	delete(c.Env.World.Players, sid)
	c.Env.World.UnregisterConn(sid)
	c.Env.Limiter.Forget(sid)
	c.Reply(systemLine(fmt.Sprintf("Kicked %s.", target.DisplayName)))
	return false
})

var _ = Define(Definition{
	Name:        "purge",
	Usage:       "/purge",
	Description: "Run integrity cleanup and force an immediate save.",
	AdminOnly:   true,
}, func(c *Context) bool {
	c.Env.World.Lock()
	report := game.Validate(c.Env.World)
	game.Cleanup(c.Env.World)
	c.Env.World.Unlock()

	if err := c.Env.Persist.SaveNow(c.Env.World); err != nil {
		c.ReplyError(err)
		return false
	}
	c.Env.World.RLock()
	defer c.Env.World.RUnlock()
	c.Reply(systemLine(fmt.Sprintf("Purge complete. Health score: %.0f (%d issue(s)).", report.HealthScore, len(report.Issues))))
	return false
})

var _ = Define(Definition{
	Name:        "safety",
	Usage:       "/safety G|PG-13|R|OFF",
	Description: "Set the AI content safety band.",
	AdminOnly:   true,
}, func(c *Context) bool {
	level := game.SafetyLevel(strings.ToUpper(strings.TrimSpace(c.Arg)))
	switch level {
	case game.SafetyG, game.SafetyPG13, game.SafetyR, game.SafetyOff:
	default:
		c.Reply(errorLine("usage: /safety G|PG-13|R|OFF"))
		return false
	}
	c.Env.World.Lock()
	defer c.Env.World.Unlock()
	c.Env.World.SafetyLevel = level
	c.Reply(systemLine("Safety level set to " + string(level) + "."))
	c.Env.Persist.SaveDebounced(c.Env.World)
	return false
})
