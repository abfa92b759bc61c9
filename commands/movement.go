package commands

import (
	"fmt"
	"strings"

	"github.com/Deeves/TinyMUD/internal/game"
)

var _ = Define(Definition{
	Name:        "go",
	Aliases:     []string{"move", "enter"},
	Usage:       "/go <door>",
	Description: "Traverse a door, stair, or travel point by name.",
}, func(c *Context) bool {
	doorQuery := strings.TrimSpace(c.Arg)
	if doorQuery == "" {
		c.Reply(errorLine("usage: /go <door>"))
		return false
	}

	c.Env.World.Lock()
	defer c.Env.World.Unlock()

	from, to, doorName, err := game.Traverse(c.Env.World, c.SessionID, doorQuery)
	if err != nil {
		c.ReplyError(err)
		return false
	}

	if player, ok := c.PlayerLocked(); ok {
		c.Env.World.BroadcastToRoom(from.ID, systemLine(fmt.Sprintf("leaves through %s.", doorName)), c.SessionID)
		c.Env.World.BroadcastToRoom(to.ID, systemLine("arrives."), c.SessionID)
		_ = player
	}
	c.Reply(describeRoomLocked(c.Env.World, to.ID))
	c.Env.Persist.SaveDebounced(c.Env.World)
	return false
})
