package commands

import (
	"fmt"
	"strings"

	"github.com/Deeves/TinyMUD/internal/game"
)

// resolveRoomObject fuzzy-resolves name against the objects in room,
// returning the matched id or an error suitable for ReplyError.
func resolveRoomObject(room *game.Room, name string) (game.EntityID, error) {
	names := make([]string, 0, len(room.Objects))
	byName := map[string]game.EntityID{}
	for id, o := range room.Objects {
		names = append(names, o.DisplayName)
		byName[o.DisplayName] = id
	}
	res := game.Resolve(name, names)
	if !res.OK {
		return "", res.Err
	}
	return byName[res.Resolved], nil
}

func resolveInventoryObject(sheet *game.CharacterSheet, name string) (game.EntityID, error) {
	objs := sheet.Inventory.Objects()
	names := make([]string, 0, len(objs))
	byName := map[string]game.EntityID{}
	for _, o := range objs {
		names = append(names, o.DisplayName)
		byName[o.DisplayName] = o.ID
	}
	res := game.Resolve(name, names)
	if !res.OK {
		return "", res.Err
	}
	return byName[res.Resolved], nil
}

var _ = Define(Definition{
	Name:        "get",
	Aliases:     []string{"take", "pickup"},
	Usage:       "/get <object>",
	Description: "Pick up an object from the room.",
}, func(c *Context) bool {
	name := strings.TrimSpace(c.Arg)
	if name == "" {
		c.Reply(errorLine("usage: /get <object>"))
		return false
	}
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
	id, err := resolveRoomObject(room, name)
	if err != nil {
		c.ReplyError(err)
		return false
	}
	obj, err := game.PickUp(room, sheet, id)
	if err != nil {
		c.ReplyError(err)
		return false
	}
	c.Reply(systemLine(fmt.Sprintf("You pick up %s.", obj.DisplayName)))
	c.BroadcastRoom(player.RoomID, systemLine(fmt.Sprintf("picks up %s.", obj.DisplayName)))
	c.Env.Persist.SaveDebounced(c.Env.World)
	return false
})

var _ = Define(Definition{
	Name:        "drop",
	Usage:       "/drop <object>",
	Description: "Drop an object from your inventory.",
}, func(c *Context) bool {
	name := strings.TrimSpace(c.Arg)
	if name == "" {
		c.Reply(errorLine("usage: /drop <object>"))
		return false
	}
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
	id, err := resolveInventoryObject(sheet, name)
	if err != nil {
		c.ReplyError(err)
		return false
	}
	obj, err := game.Drop(room, sheet, id)
	if err != nil {
		c.ReplyError(err)
		return false
	}
	c.Reply(systemLine(fmt.Sprintf("You drop %s.", obj.DisplayName)))
	c.BroadcastRoom(player.RoomID, systemLine(fmt.Sprintf("drops %s.", obj.DisplayName)))
	c.Env.Persist.SaveDebounced(c.Env.World)
	return false
})

var _ = Define(Definition{
	Name:        "search",
	Usage:       "/search <container>",
	Description: "Search a container for its contents.",
}, func(c *Context) bool {
	name := strings.TrimSpace(c.Arg)
	c.Env.World.Lock()
	defer c.Env.World.Unlock()

	player, ok := c.PlayerLocked()
	if !ok {
		return false
	}
	room, ok := c.Env.World.Rooms[player.RoomID]
	if !ok {
		return false
	}
	id, err := resolveRoomObject(room, name)
	if err != nil {
		c.ReplyError(err)
		return false
	}
	found, err := game.Search(c.Env.World, room.Objects[id])
	if err != nil {
		c.ReplyError(err)
		return false
	}
	if len(found) == 0 {
		c.Reply(systemLine("You find nothing new."))
		return false
	}
	names := make([]string, 0, len(found))
	for _, o := range found {
		names = append(names, o.DisplayName)
	}
	c.Reply(systemLine("You find: " + strings.Join(names, ", ")))
	c.Env.Persist.SaveDebounced(c.Env.World)
	return false
})

var _ = Define(Definition{
	Name:        "open",
	Usage:       "/open <container>",
	Description: "List a searched container's contents.",
}, func(c *Context) bool {
	name := strings.TrimSpace(c.Arg)
	c.Env.World.RLock()
	defer c.Env.World.RUnlock()

	player, ok := c.PlayerLocked()
	if !ok {
		return false
	}
	room, ok := c.Env.World.Rooms[player.RoomID]
	if !ok {
		return false
	}
	id, err := resolveRoomObject(room, name)
	if err != nil {
		c.ReplyError(err)
		return false
	}
	contents, err := game.Open(room.Objects[id])
	if err != nil {
		c.ReplyError(err)
		return false
	}
	if len(contents) == 0 {
		c.Reply(systemLine("It's empty."))
		return false
	}
	names := make([]string, 0, len(contents))
	for _, o := range contents {
		names = append(names, o.DisplayName)
	}
	c.Reply(systemLine("Contains: " + strings.Join(names, ", ")))
	return false
})

func consumeCommand(verb string, consume func(w *game.World, room *game.Room, sheet *game.CharacterSheet, id game.EntityID) error) Handler {
	return func(c *Context) bool {
		name := strings.TrimSpace(c.Arg)
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
		id, err := resolveInventoryObject(sheet, name)
		if err != nil {
			c.ReplyError(err)
			return false
		}
		obj := sheet.Inventory.Slots[sheet.Inventory.Find(id)]
		label := obj.DisplayName
		if err := consume(c.Env.World, room, sheet, id); err != nil {
			c.ReplyError(err)
			return false
		}
		c.Reply(systemLine(fmt.Sprintf("You %s %s.", verb, label)))
		c.BroadcastRoom(player.RoomID, systemLine(fmt.Sprintf("%ss %s.", verb, label)))
		c.Env.Persist.SaveDebounced(c.Env.World)
		return false
	}
}

var _ = Define(Definition{
	Name:        "eat",
	Usage:       "/eat <object>",
	Description: "Eat an edible item from your inventory.",
}, consumeCommand("eat", game.Eat))

var _ = Define(Definition{
	Name:        "drink",
	Usage:       "/drink <object>",
	Description: "Drink a drinkable item from your inventory.",
}, consumeCommand("drink", game.Drink))

var _ = Define(Definition{
	Name:        "craft",
	Usage:       "/craft <spot>",
	Description: "Craft at a craft spot using inventory components.",
}, func(c *Context) bool {
	name := strings.TrimSpace(c.Arg)
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
	id, err := resolveRoomObject(room, name)
	if err != nil {
		c.ReplyError(err)
		return false
	}
	product, err := game.Craft(c.Env.World, sheet, room.Objects[id])
	if err != nil {
		c.ReplyError(err)
		return false
	}
	room.Objects[product.ID] = product
	c.Reply(systemLine(fmt.Sprintf("You craft %s.", product.DisplayName)))
	c.BroadcastRoom(player.RoomID, systemLine(fmt.Sprintf("crafts %s.", product.DisplayName)))
	c.Env.Persist.SaveDebounced(c.Env.World)
	return false
})

func claimCommand(verb string, fn func(*game.Object, game.EntityID) error) Handler {
	return func(c *Context) bool {
		name := strings.TrimSpace(c.Arg)
		c.Env.World.Lock()
		defer c.Env.World.Unlock()

		player, ok := c.PlayerLocked()
		if !ok {
			return false
		}
		room, ok := c.Env.World.Rooms[player.RoomID]
		if !ok {
			return false
		}
		id, err := resolveRoomObject(room, name)
		if err != nil {
			c.ReplyError(err)
			return false
		}
		if err := fn(room.Objects[id], player.UserID); err != nil {
			c.ReplyError(err)
			return false
		}
		c.Reply(systemLine(fmt.Sprintf("You %s %s.", verb, room.Objects[id].DisplayName)))
		c.Env.Persist.SaveDebounced(c.Env.World)
		return false
	}
}

var _ = Define(Definition{
	Name:        "claim",
	Usage:       "/claim <object>",
	Description: "Claim ownership of an object in the room.",
}, claimCommand("claim", game.Claim))

var _ = Define(Definition{
	Name:        "unclaim",
	Usage:       "/unclaim <object>",
	Description: "Release ownership of an object in the room.",
}, claimCommand("unclaim", game.Unclaim))

// roomAndSheetLocked resolves the player's current room and character
// sheet together, replying with a generic inconsistency error if either is
// missing (§7 IntegrityError policy). Callers must hold Env.World's lock.
func (c *Context) roomAndSheetLocked(player *game.Player) (*game.Room, *game.CharacterSheet) {
	room, ok := c.Env.World.Rooms[player.RoomID]
	if !ok {
		c.Reply(errorLine("internal inconsistency: your room no longer exists."))
		return nil, nil
	}
	user, ok := c.Env.World.Users[player.UserID]
	if !ok || user.Sheet == nil {
		c.Reply(errorLine("internal inconsistency: your character sheet is missing."))
		return nil, nil
	}
	return room, user.Sheet
}
