package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Deeves/TinyMUD/internal/game"
)

var _ = Define(Definition{
	Name: "npc",
	Usage: "/npc add <room> | <name> | <desc>  /npc remove <room> <name>  " +
		"/npc setdesc <name> | <desc>  /npc setattr|setaspect|setmatrix <name> | <key> | <value>  " +
		"/npc sheet <name>  /npc generate [<room> | <name> | <desc>]",
	Description: "Manage NPCs.",
	AdminOnly:   true,
}, func(c *Context) bool {
	verb, arg := splitVerb(c.Arg)
	verb = strings.ToLower(verb)

	c.Env.World.Lock()
	defer c.Env.World.Unlock()

	switch verb {
	case "add":
		fields := splitPipe(arg)
		if len(fields) != 3 {
			c.Reply(errorLine("usage: /npc add <room> | <name> | <desc>"))
			return false
		}
		sheet, err := game.AddNPC(c.Env.World, game.RoomID(fields[0]), fields[1], fields[2])
		if err != nil {
			c.ReplyError(err)
			return false
		}
		c.Reply(systemLine(fmt.Sprintf("Added %s.", sheet.DisplayName)))

	case "remove":
		fields := strings.Fields(arg)
		if len(fields) != 2 {
			c.Reply(errorLine("usage: /npc remove <room> <name>"))
			return false
		}
		if err := game.RemoveNPC(c.Env.World, game.RoomID(fields[0]), fields[1]); err != nil {
			c.ReplyError(err)
			return false
		}
		c.Reply(systemLine("Removed."))

	case "setdesc":
		fields := splitPipe(arg)
		if len(fields) != 2 {
			c.Reply(errorLine("usage: /npc setdesc <name> | <desc>"))
			return false
		}
		if err := game.SetNPCDescription(c.Env.World, fields[0], fields[1]); err != nil {
			c.ReplyError(err)
			return false
		}
		c.Reply(systemLine("Description updated."))

	case "setattr":
		fields := splitPipe(arg)
		if len(fields) != 3 {
			c.Reply(errorLine("usage: /npc setattr <name> | <key> | <value>"))
			return false
		}
		if err := game.SetNPCAttribute(c.Env.World, fields[0], fields[1], fields[2]); err != nil {
			c.ReplyError(err)
			return false
		}
		c.Reply(systemLine("Attribute updated."))

	case "setaspect":
		fields := splitPipe(arg)
		if len(fields) != 3 {
			c.Reply(errorLine("usage: /npc setaspect <name> | <key> | <value>"))
			return false
		}
		if err := game.SetNPCAspect(c.Env.World, fields[0], fields[1], fields[2]); err != nil {
			c.ReplyError(err)
			return false
		}
		c.Reply(systemLine("Aspect updated."))

	case "setmatrix":
		fields := splitPipe(arg)
		if len(fields) != 3 {
			c.Reply(errorLine("usage: /npc setmatrix <name> | <axis 0-10> | <value -10..10>"))
			return false
		}
		axis, err1 := strconv.Atoi(fields[1])
		value, err2 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil {
			c.Reply(errorLine("axis and value must be integers."))
			return false
		}
		if err := game.SetNPCMatrix(c.Env.World, fields[0], axis, value); err != nil {
			c.ReplyError(err)
			return false
		}
		c.Reply(systemLine("Matrix updated."))

	case "sheet":
		name := strings.TrimSpace(arg)
		sheet, ok := c.Env.World.NPCSheets[name]
		if !ok {
			c.Reply(errorLine("no such npc."))
			return false
		}
		c.Reply(renderSheet(sheet))

	case "generate":
		fields := splitPipe(arg)
		var roomID game.RoomID
		var name, desc string
		switch len(fields) {
		case 3:
			roomID, name, desc = game.RoomID(fields[0]), fields[1], fields[2]
		case 2:
			roomID, name = game.RoomID(fields[0]), fields[1]
		default:
			if player, ok := c.PlayerLocked(); ok {
				roomID = player.RoomID
			}
			name = fmt.Sprintf("wanderer-%d", len(c.Env.World.NPCSheets)+1)
		}
		sheet, err := game.GenerateNPC(c.Env.Ctx, c.Env.World, roomID, name, desc, c.Env.Adapter, c.Env.AIMaxResponseLen)
		if err != nil {
			c.ReplyError(err)
			return false
		}
		c.Reply(systemLine(fmt.Sprintf("Generated %s: %s", sheet.DisplayName, sheet.Description)))

	default:
		c.Reply(errorLine("unknown /npc subcommand."))
		return false
	}
	c.Env.Persist.SaveDebounced(c.Env.World)
	return false
})
