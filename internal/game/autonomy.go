package game

import (
	"fmt"
	"sort"
	"strings"
)

// autonomyCandidate is one proposal from the override evaluator (§4.H.2),
// carrying the action record it would install and the priority it scored.
type autonomyCandidate struct {
	priority int
	action   ActionRecord
}

// EvaluateAutonomy runs every override heuristic for one NPC and returns the
// highest-scoring candidate, if any scored at or above the installation
// threshold of 80 (§4.H.2 base rule; supplement heuristics grounded in
// autonomous_npc_service.py).
func EvaluateAutonomy(w *World, npcName string, sheet *CharacterSheet, room *Room) (ActionRecord, bool) {
	var candidates []autonomyCandidate

	candidates = append(candidates, evaluateSafety(sheet, room)...)
	candidates = append(candidates, evaluateWealth(sheet, room)...)
	candidates = append(candidates, evaluateSocialStatus(w, sheet, npcName, room)...)
	candidates = append(candidates, evaluateFactionCombat(w, sheet, npcName, room)...)
	candidates = append(candidates, evaluateCuriosity(sheet, room)...)

	if len(candidates) == 0 {
		return ActionRecord{}, false
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].priority > candidates[j].priority })
	top := candidates[0]
	if top.priority < 80 {
		return ActionRecord{}, false
	}
	return top.action, true
}

func firstValuable(room *Room) (*Object, bool) {
	for _, o := range room.Objects {
		if o.Value > 0 {
			return o, true
		}
	}
	return nil, false
}

// evaluateSafety proposes moving through the first adjacent exit when safety
// is below 20 (priority 90) or below 30 (priority 60). It looks only at the
// safety need; whether a threat is present in the room is not checked.
func evaluateSafety(sheet *CharacterSheet, room *Room) []autonomyCandidate {
	var out []autonomyCandidate
	if sheet.Needs.Safety < 20 {
		if exits := room.AdjacentRoomIDs(); len(exits) > 0 {
			out = append(out, autonomyCandidate{90, ActionRecord{Tool: "move_through", Args: map[string]any{"name": doorNameTo(room, exits[0])}}})
		}
	} else if sheet.Needs.Safety < 30 {
		if exits := room.AdjacentRoomIDs(); len(exits) > 0 {
			out = append(out, autonomyCandidate{60, ActionRecord{Tool: "move_through", Args: map[string]any{"name": doorNameTo(room, exits[0])}}})
		}
	}
	return out
}

// evaluateWealth covers steal (responsibility<30, wealth_desire>70, priority
// >=80) and the trade-seeking supplement (priority 30).
func evaluateWealth(sheet *CharacterSheet, room *Room) []autonomyCandidate {
	var out []autonomyCandidate
	if sheet.Personality.Responsibility < 30 && sheet.Needs.WealthDesire > 70 {
		if obj, ok := firstValuable(room); ok {
			out = append(out, autonomyCandidate{80, ActionRecord{Tool: "get_object", Args: map[string]any{"object_name": obj.DisplayName}}})
		}
	} else if sheet.Needs.WealthDesire > 50 && sheet.Personality.Responsibility >= 30 {
		out = append(out, autonomyCandidate{30, ActionRecord{Tool: "do_nothing", Args: map[string]any{}}})
	}
	return out
}

// evaluateSocialStatus is the supplement heuristic for extreme social
// standing relative to room occupants (priority 35-40).
func evaluateSocialStatus(w *World, sheet *CharacterSheet, npcName string, room *Room) []autonomyCandidate {
	occupants := len(room.Players) + len(room.NPCs)
	if occupants <= 1 {
		return nil
	}
	if sheet.Needs.SocialStatus < 20 {
		return []autonomyCandidate{{40, ActionRecord{Tool: "emote", Args: map[string]any{}}}}
	}
	if sheet.Needs.SocialStatus > 80 {
		return []autonomyCandidate{{35, ActionRecord{Tool: "emote", Args: map[string]any{}}}}
	}
	return nil
}

// evaluateFactionCombat is the faction rivalry hook (§4.K, §4.H.2
// supplement): a co-located rival-faction NPC proposes insult-and-attack at
// priority 85.
func evaluateFactionCombat(w *World, sheet *CharacterSheet, npcName string, room *Room) []autonomyCandidate {
	if sheet.FactionID == "" {
		return nil
	}
	faction, ok := w.Factions[sheet.FactionID]
	if !ok {
		return nil
	}
	for otherName := range room.NPCs {
		if otherName == npcName {
			continue
		}
		otherSheet, ok := w.NPCSheets[otherName]
		if !ok || otherSheet.IsDead || otherSheet.Yielded {
			continue
		}
		if faction.IsRival(otherSheet.FactionID) {
			return []autonomyCandidate{{85, ActionRecord{Tool: "attack", Args: map[string]any{"target_name": otherName}}}}
		}
	}
	return nil
}

// evaluateCuriosity proposes moving through the first adjacent exit
// (curiosity>70, priority 80). Visited exits are not tracked, so the same
// first exit is chosen whether or not it has been explored.
func evaluateCuriosity(sheet *CharacterSheet, room *Room) []autonomyCandidate {
	if sheet.Personality.Curiosity <= 70 {
		return nil
	}
	exits := room.AdjacentRoomIDs()
	if len(exits) == 0 {
		return nil
	}
	name := doorNameTo(room, exits[0])
	if name == "" {
		return nil
	}
	return []autonomyCandidate{{80, ActionRecord{Tool: "move_through", Args: map[string]any{"name": name}}}}
}

// GenerateOfflinePlan builds the deterministic always-available plan for an
// NPC, prioritizing the most unsatisfied core need (§4.H.3 offline path).
func GenerateOfflinePlan(sheet *CharacterSheet, room *Room, npcID EntityID) []ActionRecord {
	switch sheet.Needs.Lowest() {
	case "hunger":
		if obj := firstByAffordance(sheet.Inventory.Objects(), func(o *Object) bool { _, ok := o.EdibleAmount(); return ok }); obj != nil {
			return []ActionRecord{{Tool: "consume_object", Args: map[string]any{"object_uuid": string(obj.ID)}}}
		}
		if obj := firstByAffordance(roomObjects(room), func(o *Object) bool { _, ok := o.EdibleAmount(); return ok }); obj != nil {
			return []ActionRecord{
				{Tool: "get_object", Args: map[string]any{"object_name": obj.DisplayName}},
				{Tool: "consume_object", Args: map[string]any{"object_uuid": string(obj.ID)}},
			}
		}
	case "thirst":
		if obj := firstByAffordance(sheet.Inventory.Objects(), func(o *Object) bool { _, ok := o.DrinkableAmount(); return ok }); obj != nil {
			return []ActionRecord{{Tool: "consume_object", Args: map[string]any{"object_uuid": string(obj.ID)}}}
		}
		if obj := firstByAffordance(roomObjects(room), func(o *Object) bool { _, ok := o.DrinkableAmount(); return ok }); obj != nil {
			return []ActionRecord{
				{Tool: "get_object", Args: map[string]any{"object_name": obj.DisplayName}},
				{Tool: "consume_object", Args: map[string]any{"object_uuid": string(obj.ID)}},
			}
		}
	case "socialization":
		if len(room.Players)+len(room.NPCs) > 1 {
			return []ActionRecord{{Tool: "emote", Args: map[string]any{"message": "waves."}}}
		}
		return []ActionRecord{{Tool: "emote", Args: map[string]any{}}}
	case "sleep":
		if bed := firstByAffordance(roomObjects(room), func(o *Object) bool {
			return o.HasTag(TagBed) && (o.OwnerUserID == "" || o.OwnerUserID == npcID)
		}); bed != nil {
			if bed.OwnerUserID == "" {
				return []ActionRecord{
					{Tool: "claim", Args: map[string]any{"object_uuid": string(bed.ID)}},
					{Tool: "sleep", Args: map[string]any{"bed_uuid": string(bed.ID)}},
				}
			}
			return []ActionRecord{{Tool: "sleep", Args: map[string]any{"bed_uuid": string(bed.ID)}}}
		}
	}
	return []ActionRecord{{Tool: "do_nothing", Args: map[string]any{}}}
}

func roomObjects(room *Room) []*Object {
	out := make([]*Object, 0, len(room.Objects))
	for _, o := range room.Objects {
		out = append(out, o)
	}
	return out
}

func firstByAffordance(objs []*Object, pred func(*Object) bool) *Object {
	for _, o := range objs {
		if pred(o) {
			return o
		}
	}
	return nil
}

// ExecuteAction runs one action record against the NPC's sheet/room,
// returning a description suitable for emission. It does not touch AP: its
// caller, StepNPC, spends 1 AP per action regardless of success (§4.H.4
// execution rule).
func ExecuteAction(w *World, npcName string, sheet *CharacterSheet, room *Room, action ActionRecord, sleepTicks int) (string, error) {
	switch action.Tool {
	case "get_object":
		name, _ := action.Args["object_name"].(string)
		names := make([]string, 0, len(room.Objects))
		byName := map[string]EntityID{}
		for id, o := range room.Objects {
			names = append(names, o.DisplayName)
			byName[o.DisplayName] = id
		}
		res := Resolve(name, names)
		if !res.OK {
			return "", res.Err
		}
		obj, err := PickUp(room, sheet, byName[res.Resolved])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s picks up %s.", npcName, obj.DisplayName), nil

	case "consume_object":
		idStr, _ := action.Args["object_uuid"].(string)
		id := EntityID(idStr)
		idx := sheet.Inventory.Find(id)
		if idx < 0 {
			return "", newNotFoundError("no such object.")
		}
		obj := sheet.Inventory.Slots[idx]
		if _, ok := obj.EdibleAmount(); ok {
			if err := Eat(w, room, sheet, id); err != nil {
				return "", err
			}
		} else if _, ok := obj.DrinkableAmount(); ok {
			if err := Drink(w, room, sheet, id); err != nil {
				return "", err
			}
		} else {
			return "", newValidationError("that isn't consumable.")
		}
		return fmt.Sprintf("%s consumes %s.", npcName, obj.DisplayName), nil

	case "emote":
		msg, _ := action.Args["message"].(string)
		sheet.Needs.Socialization = clamp(sheet.Needs.Socialization+10, 0, 100)
		if strings.TrimSpace(msg) == "" {
			return fmt.Sprintf("%s socializes.", npcName), nil
		}
		return fmt.Sprintf("%s %s", npcName, msg), nil

	case "claim", "unclaim":
		idStr, _ := action.Args["object_uuid"].(string)
		id := EntityID(idStr)
		obj, ok := room.Objects[id]
		if !ok {
			return "", newNotFoundError("no such object.")
		}
		npcID := w.NPCIDs[npcName]
		if action.Tool == "claim" {
			if err := Claim(obj, npcID); err != nil {
				return "", err
			}
			return fmt.Sprintf("%s claims %s.", npcName, obj.DisplayName), nil
		}
		if err := Unclaim(obj, npcID); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s unclaims %s.", npcName, obj.DisplayName), nil

	case "sleep":
		idStr, _ := action.Args["bed_uuid"].(string)
		id := EntityID(idStr)
		bed, ok := room.Objects[id]
		npcID := w.NPCIDs[npcName]
		if !ok || !bed.HasTag(TagBed) || bed.OwnerUserID != npcID {
			return "", newConstraintError("there's no bed here for you to sleep in.")
		}
		sheet.Planner.SleepingTicksRemaining = sleepTicks
		sheet.Planner.SleepingBedUUID = id
		return fmt.Sprintf("%s settles in to sleep.", npcName), nil

	case "do_nothing":
		return fmt.Sprintf("%s thinks for a moment.", npcName), nil

	case "move_through":
		name, _ := action.Args["name"].(string)
		_, to, doorName, err := TraverseNPC(w, npcName, name)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s leaves through %s toward %s.", npcName, doorName, to.DisplayName), nil

	case "attack":
		targetName, _ := action.Args["target_name"].(string)
		target, ok := w.NPCSheets[targetName]
		if !ok {
			return "", newNotFoundError("no such target.")
		}
		res, err := NPCAutonomousAttack(sheet, target)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s attacks %s for %d damage.", npcName, targetName, res.Damage), nil

	default:
		return "", newValidationError(fmt.Sprintf("unknown action %q.", action.Tool))
	}
}
