package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Deeves/TinyMUD/internal/game"
)

// describeRoomLocked renders a room for the arriving/looking player. Callers
// must already hold Env.World's lock.
func describeRoomLocked(w *game.World, roomID game.RoomID) string {
	room, ok := w.Rooms[roomID]
	if !ok {
		return errorLine("you are nowhere. the room beneath you no longer exists.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[b]%s[/b]\n%s\n", room.DisplayName, room.Description)

	var names []string
	for sid, p := range w.Players {
		if p.RoomID != roomID {
			continue
		}
		if u, ok := w.Users[p.UserID]; ok {
			names = append(names, u.DisplayName)
		}
		_ = sid
	}
	for name := range room.NPCs {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > 0 {
		fmt.Fprintf(&b, "Also here: %s\n", strings.Join(names, ", "))
	}

	var objNames []string
	for _, o := range room.Objects {
		objNames = append(objNames, o.DisplayName)
	}
	sort.Strings(objNames)
	if len(objNames) > 0 {
		fmt.Fprintf(&b, "You see: %s\n", strings.Join(objNames, ", "))
	}

	doors := room.DoorNames()
	sort.Strings(doors)
	if len(doors) > 0 {
		fmt.Fprintf(&b, "Exits: %s", strings.Join(doors, ", "))
	}
	return b.String()
}

var _ = Define(Definition{
	Name:        "look",
	Aliases:     []string{"l"},
	Usage:       "look",
	Description: "Describe your surroundings.",
}, func(c *Context) bool {
	c.Env.World.RLock()
	defer c.Env.World.RUnlock()
	player, ok := c.PlayerLocked()
	if !ok {
		return false
	}
	c.Reply(describeRoomLocked(c.Env.World, player.RoomID))
	return false
})

var _ = Define(Definition{
	Name:        "rename",
	Usage:       "/rename <name>",
	Description: "Change your display name.",
}, func(c *Context) bool {
	name := strings.TrimSpace(c.Arg)
	if name == "" {
		c.Reply(errorLine("usage: /rename <name>"))
		return false
	}
	c.Env.World.Lock()
	defer c.Env.World.Unlock()
	user, ok := c.UserLocked()
	if !ok {
		return false
	}
	if _, taken := c.Env.World.UserByName(name); taken {
		c.Reply(errorLine("that name is already taken."))
		return false
	}
	old := user.DisplayName
	user.DisplayName = name
	c.Env.World.RebuildUsernameIndex()
	c.Reply(systemLine(fmt.Sprintf("You are now known as %s.", name)))
	if player, ok := c.PlayerLocked(); ok {
		c.BroadcastRoom(player.RoomID, systemLine(fmt.Sprintf("%s is now known as %s.", old, name)))
	}
	c.Env.Persist.SaveDebounced(c.Env.World)
	return false
})

var _ = Define(Definition{
	Name:        "describe",
	Usage:       "/describe <text>",
	Description: "Set your character's description.",
}, func(c *Context) bool {
	desc := strings.TrimSpace(c.Arg)
	if desc == "" {
		c.Reply(errorLine("usage: /describe <text>"))
		return false
	}
	c.Env.World.Lock()
	defer c.Env.World.Unlock()
	user, ok := c.UserLocked()
	if !ok || user.Sheet == nil {
		return false
	}
	user.Sheet.Description = desc
	c.Reply(systemLine("Description updated."))
	c.Env.Persist.SaveDebounced(c.Env.World)
	return false
})

var _ = Define(Definition{
	Name:        "sheet",
	Usage:       "/sheet",
	Description: "Show your character sheet.",
}, func(c *Context) bool {
	c.Env.World.RLock()
	defer c.Env.World.RUnlock()
	user, ok := c.UserLocked()
	if !ok || user.Sheet == nil {
		return false
	}
	c.Reply(renderSheet(user.Sheet))
	return false
})

func renderSheet(s *game.CharacterSheet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[b]%s[/b]\n%s\n", s.DisplayName, s.Description)
	fmt.Fprintf(&b, "STR %d DEX %d IQ %d HT %d  HP %d/%d  FP %d/%d  Will %d Per %d\n",
		s.Strength, s.Dexterity, s.Intelligence, s.Health, s.HP, s.MaxHP, s.FP, s.MaxFP, s.Will, s.Perception)
	fmt.Fprintf(&b, "Needs — hunger %.0f thirst %.0f social %.0f sleep %.0f safety %.0f\n",
		s.Needs.Hunger, s.Needs.Thirst, s.Needs.Socialization, s.Needs.Sleep, s.Needs.Safety)
	if s.IsDead {
		b.WriteString("You are dead.\n")
	} else if s.Yielded {
		b.WriteString("You have yielded.\n")
	}
	return b.String()
}

var _ = Define(Definition{
	Name:        "who",
	Usage:       "/who",
	Description: "List connected players.",
}, func(c *Context) bool {
	c.Env.World.RLock()
	defer c.Env.World.RUnlock()
	var names []string
	for _, p := range c.Env.World.Players {
		if u, ok := c.Env.World.Users[p.UserID]; ok {
			names = append(names, u.DisplayName)
		}
	}
	sort.Strings(names)
	c.Reply(systemLine(fmt.Sprintf("Connected (%d): %s", len(names), strings.Join(names, ", "))))
	return false
})

var _ = Define(Definition{
	Name:        "help",
	Usage:       "/help",
	Description: "List available commands.",
}, func(c *Context) bool {
	cmds := All()
	var names []string
	for _, cmd := range cmds {
		names = append(names, cmd.Name)
	}
	sort.Strings(names)
	c.Env.World.RLock()
	defer c.Env.World.RUnlock()
	c.Reply(systemLine("Commands: " + strings.Join(names, ", ")))
	return false
})

var _ = Define(Definition{
	Name:        "quit",
	Usage:       "/quit",
	Description: "Disconnect.",
}, func(c *Context) bool {
	c.Env.World.Lock()
	c.Reply(systemLine("Farewell."))
	leaveWorldLocked(c.Env, c.SessionID)
	c.Env.World.Unlock()
	if err := c.Env.Persist.SaveNow(c.Env.World); err != nil {
		c.Env.Log.Error("save on quit failed", "error", err)
	}
	return true
})

// leaveWorldLocked removes sessionID's player from its room and the world
// and cancels any trade it was party to. Callers must hold Env.World.Lock()
// and flush with an immediate save (logout is a critical moment) once they
// release it.
func leaveWorldLocked(env *Env, sessionID game.EntityID) {
	if player, ok := env.World.Players[sessionID]; ok {
		env.World.BroadcastToRoom(player.RoomID, systemLine("leaves."), sessionID)
		if room, ok := env.World.Rooms[player.RoomID]; ok {
			delete(room.Players, string(sessionID))
		}
		if user, ok := env.World.Users[player.UserID]; ok {
			CancelTradesForUser(env.World, user.UserID)
		}
		delete(env.World.Players, sessionID)
	}
	env.Limiter.Forget(sessionID)
}
