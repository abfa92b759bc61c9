package commands

import (
	"fmt"
	"strings"

	"github.com/Deeves/TinyMUD/internal/game"
)

// room is the admin room-management surface (§6.4, §4.F room service).
var _ = Define(Definition{
	Name: "room",
	Usage: "/room create <id> | <desc>  /room setdesc <id> | <desc>  " +
		"/room adddoor <name> | <target>  /room removedoor <name>  " +
		"/room linkdoor <a> | <da> | <b> | <db>  /room setstairs <up> | <down>  " +
		"/room lockdoor <door> | <policy>",
	Description: "Manage rooms and their connections.",
	AdminOnly:   true,
}, func(c *Context) bool {
	verb, arg := splitVerb(c.Arg)
	verb = strings.ToLower(verb)

	c.Env.World.Lock()
	defer c.Env.World.Unlock()

	switch verb {
	case "create":
		fields := splitPipe(arg)
		if len(fields) != 2 {
			c.Reply(errorLine("usage: /room create <id> | <desc>"))
			return false
		}
		room, err := game.CreateRoom(c.Env.World, game.RoomID(fields[0]), fields[0], fields[1])
		if err != nil {
			c.ReplyError(err)
			return false
		}
		c.Reply(systemLine(fmt.Sprintf("Created room %s.", room.ID)))

	case "setdesc":
		fields := splitPipe(arg)
		if len(fields) != 2 {
			c.Reply(errorLine("usage: /room setdesc <id> | <desc>"))
			return false
		}
		if err := game.SetRoomDescription(c.Env.World, game.RoomID(fields[0]), fields[1]); err != nil {
			c.ReplyError(err)
			return false
		}
		c.Reply(systemLine("Description updated."))

	case "adddoor":
		fields := splitPipe(arg)
		if len(fields) != 2 {
			c.Reply(errorLine("usage: /room adddoor <name> | <target>"))
			return false
		}
		player, ok := c.PlayerLocked()
		if !ok {
			return false
		}
		if err := game.LinkDoors(c.Env.World, player.RoomID, fields[0], game.RoomID(fields[1]), "back"); err != nil {
			c.ReplyError(err)
			return false
		}
		c.Reply(systemLine("Door added."))

	case "removedoor":
		player, ok := c.PlayerLocked()
		if !ok {
			return false
		}
		if err := game.UnlinkDoor(c.Env.World, player.RoomID, strings.TrimSpace(arg)); err != nil {
			c.ReplyError(err)
			return false
		}
		c.Reply(systemLine("Door removed."))

	case "linkdoor":
		fields := splitPipe(arg)
		if len(fields) != 4 {
			c.Reply(errorLine("usage: /room linkdoor <a> | <door-a-name> | <b> | <door-b-name>"))
			return false
		}
		if err := game.LinkDoors(c.Env.World, game.RoomID(fields[0]), fields[1], game.RoomID(fields[2]), fields[3]); err != nil {
			c.ReplyError(err)
			return false
		}
		c.Reply(systemLine("Rooms linked."))

	case "setstairs":
		fields := splitPipe(arg)
		if len(fields) != 2 {
			c.Reply(errorLine("usage: /room setstairs <up> | <down>"))
			return false
		}
		if err := game.SetStairs(c.Env.World, game.RoomID(fields[1]), game.RoomID(fields[0])); err != nil {
			c.ReplyError(err)
			return false
		}
		c.Reply(systemLine("Stairs set."))

	case "lockdoor":
		fields := splitPipe(arg)
		if len(fields) != 2 {
			c.Reply(errorLine("usage: /room lockdoor <door> | <comma-separated-allowed-user-names>"))
			return false
		}
		player, ok := c.PlayerLocked()
		if !ok {
			return false
		}
		var ids []game.EntityID
		for _, n := range strings.Split(fields[1], ",") {
			if u, ok := c.Env.World.UserByName(strings.TrimSpace(n)); ok {
				ids = append(ids, u.UserID)
			}
		}
		policy := game.LockPolicy{AllowIDs: ids}
		if err := game.LockDoor(c.Env.World, player.RoomID, fields[0], policy); err != nil {
			c.ReplyError(err)
			return false
		}
		c.Reply(systemLine("Door locked."))

	default:
		c.Reply(errorLine("unknown /room subcommand."))
		return false
	}
	c.Env.Persist.SaveDebounced(c.Env.World)
	return false
})
