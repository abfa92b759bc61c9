package commands

import (
	"fmt"
	"strings"

	"github.com/Deeves/TinyMUD/internal/game"
)

var _ = Define(Definition{
	Name:        "attack",
	Usage:       "/attack <target>",
	Description: "Attack another player or NPC in the room.",
}, func(c *Context) bool {
	name := strings.TrimSpace(c.Arg)
	if name == "" {
		c.Reply(errorLine("usage: /attack <target>"))
		return false
	}
	c.Env.World.Lock()
	defer c.Env.World.Unlock()

	player, ok := c.PlayerLocked()
	if !ok {
		return false
	}
	room, attackerSheet := c.roomAndSheetLocked(player)
	if room == nil || attackerSheet == nil {
		return false
	}
	if !attackerSheet.CanAct() {
		c.Reply(errorLine("the dead do not fight."))
		return false
	}

	targetSheet, targetIsNPC, targetLabel, targetSessionID, ok := resolveTarget(c.Env.World, room, player.UserID, name)
	if !ok {
		c.Reply(errorLine("no such target here."))
		return false
	}

	res, err := game.Attack(attackerSheet, targetSheet, targetIsNPC)
	if err != nil {
		c.ReplyError(err)
		return false
	}

	c.Reply(systemLine(fmt.Sprintf("You hit %s for %d damage.", targetLabel, res.Damage)))
	c.BroadcastRoom(player.RoomID, systemLine(fmt.Sprintf("hits %s for %d damage.", targetLabel, res.Damage)))
	if targetSessionID != "" {
		c.Env.World.Emit(targetSessionID, errorLine(fmt.Sprintf("%s hits you for %d damage.", attackerSheet.DisplayName, res.Damage)))
	}
	if res.TargetDied {
		c.BroadcastRoom(player.RoomID, errorLine(targetLabel+" has died."))
	} else if res.TargetYielded {
		c.BroadcastRoom(player.RoomID, systemLine(targetLabel+" yields."))
	}
	c.Env.Persist.SaveDebounced(c.Env.World)
	return false
})

// resolveTarget fuzzy-resolves name against every live player and NPC
// sharing the actor's room, excluding the actor.
func resolveTarget(w *game.World, room *game.Room, actorUserID game.EntityID, name string) (sheet *game.CharacterSheet, isNPC bool, label string, sessionID game.EntityID, ok bool) {
	candidates := map[string]func() (*game.CharacterSheet, bool, game.EntityID){}
	for sid, p := range w.Players {
		if p.RoomID != room.ID || p.UserID == actorUserID {
			continue
		}
		u, exists := w.Users[p.UserID]
		if !exists || u.Sheet == nil {
			continue
		}
		sid := sid
		candidates[u.DisplayName] = func() (*game.CharacterSheet, bool, game.EntityID) { return u.Sheet, false, sid }
	}
	for npcName := range room.NPCs {
		npcName := npcName
		candidates[npcName] = func() (*game.CharacterSheet, bool, game.EntityID) { return w.NPCSheets[npcName], true, "" }
	}
	names := make([]string, 0, len(candidates))
	for n := range candidates {
		names = append(names, n)
	}
	res := game.Resolve(name, names)
	if !res.OK {
		return nil, false, "", "", false
	}
	sheet, isNPC, sessionID = candidates[res.Resolved]()
	return sheet, isNPC, res.Resolved, sessionID, sheet != nil
}

var _ = Define(Definition{
	Name:        "flee",
	Usage:       "/flee",
	Description: "Flee to a random adjacent, permitted room.",
}, func(c *Context) bool {
	c.Env.World.Lock()
	defer c.Env.World.Unlock()

	player, ok := c.PlayerLocked()
	if !ok {
		return false
	}
	room, sheet := c.roomAndSheetLocked(player)
	if room == nil || sheet == nil {
		return false
	}
	dest, err := game.Flee(c.Env.World, room, sheet, player.UserID)
	if err != nil {
		c.ReplyError(err)
		return false
	}
	c.BroadcastRoom(room.ID, systemLine("flees!"))
	delete(room.Players, string(c.SessionID))
	player.RoomID = dest.ID
	dest.Players[string(c.SessionID)] = true
	c.BroadcastRoom(dest.ID, systemLine("arrives, fleeing."))
	c.Reply(describeRoomLocked(c.Env.World, dest.ID))
	c.Env.Persist.SaveDebounced(c.Env.World)
	return false
})
