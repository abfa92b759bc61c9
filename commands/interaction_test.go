package commands

import (
	"strings"
	"testing"

	"github.com/Deeves/TinyMUD/internal/game"
)

func placeObject(room *game.Room, o *game.Object) {
	if o.ID == "" {
		o.ID = game.NewEntityID()
	}
	room.Objects[o.ID] = o
}

func TestGetPicksUpObjectFromRoom(t *testing.T) {
	env := newTestEnv(t)
	sid, _, conn := joinTestPlayer(t, env, "Scavenger", "start")
	room := env.World.Rooms["start"]
	placeObject(room, &game.Object{DisplayName: "a rusty key"})
	drainOutput(conn)

	dispatchAs(env, sid, "/get rusty key")

	msgs := drainOutput(conn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "You pick up a rusty key") {
		t.Fatalf("expected a pickup confirmation, got %v", msgs)
	}
	user, _ := env.World.UserByName("Scavenger")
	if user.Sheet.Inventory.Find(user.Sheet.Inventory.Objects()[0].ID) < 0 {
		t.Fatal("expected the key to be in the player's inventory")
	}
	if len(room.Objects) != 0 {
		t.Fatal("expected the key to be removed from the room")
	}
}

func TestGetImmovableObjectIsRejected(t *testing.T) {
	env := newTestEnv(t)
	sid, _, conn := joinTestPlayer(t, env, "Scavenger", "start")
	room := env.World.Rooms["start"]
	placeObject(room, &game.Object{DisplayName: "a stone altar", Tags: []string{game.TagImmovable}})
	drainOutput(conn)

	dispatchAs(env, sid, "/get stone altar")

	msgs := drainOutput(conn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "can't pick that up") {
		t.Fatalf("expected a can't-pick-up error, got %v", msgs)
	}
	if len(room.Objects) != 1 {
		t.Fatal("the altar should remain in the room")
	}
}

func TestDropReturnsObjectToRoom(t *testing.T) {
	env := newTestEnv(t)
	sid, user, conn := joinTestPlayer(t, env, "Packrat", "start")
	obj := &game.Object{ID: game.NewEntityID(), DisplayName: "a wooden spoon"}
	user.Sheet.Inventory.PlaceAny(obj)
	drainOutput(conn)

	dispatchAs(env, sid, "/drop wooden spoon")

	msgs := drainOutput(conn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "You drop a wooden spoon") {
		t.Fatalf("expected a drop confirmation, got %v", msgs)
	}
	if user.Sheet.Inventory.Find(obj.ID) >= 0 {
		t.Fatal("expected the spoon to leave the inventory")
	}
	if _, ok := env.World.Rooms["start"].Objects[obj.ID]; !ok {
		t.Fatal("expected the spoon to be placed in the room")
	}
}

func TestDropUncarriedObjectReportsError(t *testing.T) {
	env := newTestEnv(t)
	sid, _, conn := joinTestPlayer(t, env, "Empty", "start")

	dispatchAs(env, sid, "/drop anything")

	msgs := drainOutput(conn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "not found") {
		t.Fatalf("expected a not-found error reply, got %v", msgs)
	}
}

func TestSearchSpawnsLootOnFirstSearchOnly(t *testing.T) {
	env := newTestEnv(t)
	sid, _, conn := joinTestPlayer(t, env, "Looter", "start")
	room := env.World.Rooms["start"]
	chest := &game.Object{ID: game.NewEntityID(), DisplayName: "an old chest", Tags: []string{game.TagContainer}}
	placeObject(room, chest)
	env.World.ObjectTemplates["coin"] = &game.ObjectTemplate{
		Key: "coin",
		Object: game.Object{DisplayName: "a gold coin", LootLocationHint: "an old chest"},
	}
	drainOutput(conn)

	dispatchAs(env, sid, "/search old chest")
	msgs := drainOutput(conn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "You find: a gold coin") {
		t.Fatalf("expected the chest's loot to be found, got %v", msgs)
	}

	dispatchAs(env, sid, "/search old chest")
	msgs = drainOutput(conn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "already searched") {
		t.Fatalf("expected a second search to be rejected, got %v", msgs)
	}
}

func TestOpenRequiresPriorSearch(t *testing.T) {
	env := newTestEnv(t)
	sid, _, conn := joinTestPlayer(t, env, "Curious", "start")
	room := env.World.Rooms["start"]
	placeObject(room, &game.Object{ID: game.NewEntityID(), DisplayName: "a locked crate", Tags: []string{game.TagContainer}})
	drainOutput(conn)

	dispatchAs(env, sid, "/open locked crate")
	msgs := drainOutput(conn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "search it first") {
		t.Fatalf("expected an unsearched-container error, got %v", msgs)
	}
}

func TestOpenListsSearchedContainerContents(t *testing.T) {
	env := newTestEnv(t)
	sid, _, conn := joinTestPlayer(t, env, "Curious", "start")
	room := env.World.Rooms["start"]
	crate := &game.Object{ID: game.NewEntityID(), DisplayName: "a wooden crate", Tags: []string{game.TagContainer}}
	placeObject(room, crate)
	drainOutput(conn)

	dispatchAs(env, sid, "/search wooden crate")
	drainOutput(conn)
	dispatchAs(env, sid, "/open wooden crate")
	msgs := drainOutput(conn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "empty") {
		t.Fatalf("expected the empty crate to report empty, got %v", msgs)
	}
}

func TestEatEdibleItemRestoresHungerAndSpawnsByproducts(t *testing.T) {
	env := newTestEnv(t)
	sid, user, conn := joinTestPlayer(t, env, "Hungry", "start")
	user.Sheet.Needs.Hunger = 10
	apple := &game.Object{ID: game.NewEntityID(), DisplayName: "an apple", Tags: []string{"Edible: 20"}, DeconstructRecipe: []string{"core"}}
	user.Sheet.Inventory.PlaceAny(apple)
	env.World.ObjectTemplates["core"] = &game.ObjectTemplate{
		Key:    "core",
		Object: game.Object{DisplayName: "an apple core"},
	}
	drainOutput(conn)

	dispatchAs(env, sid, "/eat apple")

	msgs := drainOutput(conn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "You eat an apple") {
		t.Fatalf("expected an eat confirmation, got %v", msgs)
	}
	if user.Sheet.Needs.Hunger != 30 {
		t.Fatalf("Hunger = %v, want 30", user.Sheet.Needs.Hunger)
	}
	found := false
	for _, o := range env.World.Rooms["start"].Objects {
		if o.DisplayName == "an apple core" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the apple core to be spawned into the room")
	}
}

func TestEatNonEdibleItemIsRejected(t *testing.T) {
	env := newTestEnv(t)
	sid, user, conn := joinTestPlayer(t, env, "Hungry", "start")
	rock := &game.Object{ID: game.NewEntityID(), DisplayName: "a rock"}
	user.Sheet.Inventory.PlaceAny(rock)
	drainOutput(conn)

	dispatchAs(env, sid, "/eat rock")

	msgs := drainOutput(conn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "consume that way") {
		t.Fatalf("expected a not-edible error, got %v", msgs)
	}
}

func TestDrinkDrinkableItemRestoresThirst(t *testing.T) {
	env := newTestEnv(t)
	sid, user, conn := joinTestPlayer(t, env, "Parched", "start")
	user.Sheet.Needs.Thirst = 5
	water := &game.Object{ID: game.NewEntityID(), DisplayName: "a waterskin", Tags: []string{"Drinkable: 15"}}
	user.Sheet.Inventory.PlaceAny(water)
	drainOutput(conn)

	dispatchAs(env, sid, "/drink waterskin")

	msgs := drainOutput(conn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "You drink a waterskin") {
		t.Fatalf("expected a drink confirmation, got %v", msgs)
	}
	if user.Sheet.Needs.Thirst != 20 {
		t.Fatalf("Thirst = %v, want 20", user.Sheet.Needs.Thirst)
	}
}

func TestCraftProducesItemWhenComponentsHeld(t *testing.T) {
	env := newTestEnv(t)
	sid, user, conn := joinTestPlayer(t, env, "Smith", "start")
	room := env.World.Rooms["start"]
	spot := &game.Object{ID: game.NewEntityID(), DisplayName: "a forge", Tags: []string{"craft spot:sword"}}
	placeObject(room, spot)
	env.World.ObjectTemplates["sword"] = &game.ObjectTemplate{
		Key:    "sword",
		Object: game.Object{DisplayName: "a steel sword", CraftRecipe: []string{"an iron ingot"}},
	}
	ingot := &game.Object{ID: game.NewEntityID(), DisplayName: "an iron ingot"}
	user.Sheet.Inventory.PlaceAny(ingot)
	drainOutput(conn)

	dispatchAs(env, sid, "/craft forge")

	msgs := drainOutput(conn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "You craft a steel sword") {
		t.Fatalf("expected a craft confirmation, got %v", msgs)
	}
	if user.Sheet.Inventory.CountByName("an iron ingot") != 0 {
		t.Fatal("expected the ingot component to be consumed")
	}
}

func TestCraftMissingComponentsIsRejected(t *testing.T) {
	env := newTestEnv(t)
	sid, _, conn := joinTestPlayer(t, env, "Smith", "start")
	room := env.World.Rooms["start"]
	spot := &game.Object{ID: game.NewEntityID(), DisplayName: "a forge", Tags: []string{"craft spot:sword"}}
	placeObject(room, spot)
	env.World.ObjectTemplates["sword"] = &game.ObjectTemplate{
		Key:    "sword",
		Object: game.Object{DisplayName: "a steel sword", CraftRecipe: []string{"an iron ingot"}},
	}
	drainOutput(conn)

	dispatchAs(env, sid, "/craft forge")

	msgs := drainOutput(conn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "you're missing") {
		t.Fatalf("expected a missing-components error, got %v", msgs)
	}
}

func TestClaimAndUnclaimObject(t *testing.T) {
	env := newTestEnv(t)
	sid, user, conn := joinTestPlayer(t, env, "Owner", "start")
	room := env.World.Rooms["start"]
	statue := &game.Object{ID: game.NewEntityID(), DisplayName: "a marble statue"}
	placeObject(room, statue)
	drainOutput(conn)

	dispatchAs(env, sid, "/claim marble statue")
	msgs := drainOutput(conn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "You claim a marble statue") {
		t.Fatalf("expected a claim confirmation, got %v", msgs)
	}
	if statue.OwnerUserID != user.UserID {
		t.Fatal("expected the statue's owner to be set")
	}

	dispatchAs(env, sid, "/unclaim marble statue")
	msgs = drainOutput(conn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "You unclaim a marble statue") {
		t.Fatalf("expected an unclaim confirmation, got %v", msgs)
	}
	if statue.OwnerUserID != "" {
		t.Fatal("expected the statue's owner to be cleared")
	}
}

func TestClaimAlreadyOwnedByAnotherIsRejected(t *testing.T) {
	env := newTestEnv(t)
	ownerSid, owner, ownerConn := joinTestPlayer(t, env, "Owner", "start")
	rivalSid, _, rivalConn := joinTestPlayer(t, env, "Rival", "start")
	room := env.World.Rooms["start"]
	statue := &game.Object{ID: game.NewEntityID(), DisplayName: "a marble statue"}
	placeObject(room, statue)

	dispatchAs(env, ownerSid, "/claim marble statue")
	drainOutput(ownerConn)
	if statue.OwnerUserID != owner.UserID {
		t.Fatal("setup: expected Owner to hold the claim")
	}

	dispatchAs(env, rivalSid, "/claim marble statue")
	msgs := drainOutput(rivalConn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "already claimed") {
		t.Fatalf("expected an already-claimed error, got %v", msgs)
	}
}

func TestUnclaimSomeoneElsesObjectIsRejected(t *testing.T) {
	env := newTestEnv(t)
	ownerSid, _, ownerConn := joinTestPlayer(t, env, "Owner", "start")
	rivalSid, _, rivalConn := joinTestPlayer(t, env, "Rival", "start")
	room := env.World.Rooms["start"]
	statue := &game.Object{ID: game.NewEntityID(), DisplayName: "a marble statue"}
	placeObject(room, statue)

	dispatchAs(env, ownerSid, "/claim marble statue")
	drainOutput(ownerConn)

	dispatchAs(env, rivalSid, "/unclaim marble statue")
	msgs := drainOutput(rivalConn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "don't own that") {
		t.Fatalf("expected a not-owner error, got %v", msgs)
	}
}
