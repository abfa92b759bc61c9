package game

import "fmt"

// ValidationReport is the result of running the integrity checker (§4.J).
type ValidationReport struct {
	Issues     []string
	HealthScore float64
}

// Validate runs every structural and planner-state check against world,
// returning the issue list and a 0-100 health score
// (`max(0, 100 - failedChecks*100/totalChecks)`, grounded in
// goap_state_manager.py: audit_world_planner_integrity).
func Validate(w *World) ValidationReport {
	var issues []string
	total, failed := 0, 0
	check := func(ok bool, msg string) {
		total++
		if !ok {
			failed++
			issues = append(issues, msg)
		}
	}

	seen := map[EntityID]bool{}
	checkUniqueUUID := func(id EntityID, kind string) {
		if !ValidEntityID(id) {
			check(false, fmt.Sprintf("%s %q is not a valid uuid", kind, id))
			return
		}
		check(!seen[id], fmt.Sprintf("%s uuid %q is not globally unique", kind, id))
		seen[id] = true
	}
	for _, r := range w.Rooms {
		checkUniqueUUID(r.UUID, "room")
		for _, o := range r.Objects {
			checkUniqueUUID(o.ID, "object")
		}
	}
	for _, id := range w.NPCIDs {
		checkUniqueUUID(id, "npc")
	}
	for id := range w.Users {
		checkUniqueUUID(id, "user")
	}

	for sid, p := range w.Players {
		_, ok := w.Rooms[p.RoomID]
		check(ok, fmt.Sprintf("player session %q references nonexistent room %q", sid, p.RoomID))
	}
	for name := range w.NPCSheets {
		_, ok := w.NPCIDs[name]
		check(ok, fmt.Sprintf("npc sheet %q has no id mapping", name))
	}

	for roomID, room := range w.Rooms {
		for doorName, targetID := range room.Doors {
			target, ok := w.Rooms[targetID]
			if !ok {
				check(false, fmt.Sprintf("room %q door %q targets nonexistent room %q", roomID, doorName, targetID))
				continue
			}
			reciprocal := false
			for _, back := range target.Doors {
				if back == roomID {
					reciprocal = true
					break
				}
			}
			check(reciprocal, fmt.Sprintf("room %q door %q to %q has no reciprocal door", roomID, doorName, targetID))

			doorObjID, hasObj := room.DoorIDs[doorName]
			if hasObj {
				obj, ok := room.Objects[doorObjID]
				check(ok && obj.IsTravelPoint() && obj.LinkTargetRoom == targetID,
					fmt.Sprintf("room %q door %q object is inconsistent with its link target", roomID, doorName))
			}
		}
		if room.StairsUpTo != "" {
			_, ok := w.Rooms[room.StairsUpTo]
			check(ok, fmt.Sprintf("room %q stairs up targets nonexistent room %q", roomID, room.StairsUpTo))
		}
		if room.StairsDownTo != "" {
			_, ok := w.Rooms[room.StairsDownTo]
			check(ok, fmt.Sprintf("room %q stairs down targets nonexistent room %q", roomID, room.StairsDownTo))
		}
		for _, o := range room.Objects {
			if o.HasTag(TagTravelPoint) {
				check(o.HasTag(TagImmovable) && o.LinkTargetRoom != "",
					fmt.Sprintf("object %q is a Travel Point without Immovable+link_target_room", o.ID))
			}
		}
	}

	checkInventory := func(owner string, inv *Inventory) {
		total++
		slotsOK := len(inv.Slots) == 8
		if !slotsOK {
			failed++
			issues = append(issues, fmt.Sprintf("%s inventory does not have exactly 8 slots", owner))
			return
		}
		dupe := map[EntityID]bool{}
		ok := true
		for idx, o := range inv.Slots {
			if o == nil {
				continue
			}
			if dupe[o.ID] {
				ok = false
			}
			dupe[o.ID] = true
			if !slotAccepts(idx, o) {
				ok = false
			}
		}
		if !ok {
			failed++
			issues = append(issues, fmt.Sprintf("%s inventory has duplicate or misplaced items", owner))
		}
	}
	for _, u := range w.Users {
		if u.Sheet != nil {
			checkInventory("user "+u.DisplayName, &u.Sheet.Inventory)
		}
	}
	for name, s := range w.NPCSheets {
		checkInventory("npc "+name, &s.Inventory)
	}

	for name, s := range w.NPCSheets {
		check(s.Needs.Hunger >= 0 && s.Needs.Hunger <= 100, fmt.Sprintf("npc %q hunger out of range", name))
		check(s.Needs.Thirst >= 0 && s.Needs.Thirst <= 100, fmt.Sprintf("npc %q thirst out of range", name))
		check(s.Planner.ActionPoints >= 0, fmt.Sprintf("npc %q has negative action points", name))

		wellFormed := true
		for _, a := range s.Planner.PlanQueue {
			if !a.WellFormed() {
				wellFormed = false
				break
			}
		}
		check(wellFormed, fmt.Sprintf("npc %q plan queue has a malformed entry", name))

		sleepConsistent := (s.Planner.SleepingTicksRemaining > 0) == (s.Planner.SleepingBedUUID != "")
		check(sleepConsistent, fmt.Sprintf("npc %q sleep state is inconsistent", name))
	}

	score := 100.0
	if total > 0 {
		score = max0(100 - float64(failed)*100/float64(total))
	}
	return ValidationReport{Issues: issues, HealthScore: score}
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// Cleanup applies the §4.J cleanup routines: clamp needs, clamp psychosocial
// matrices, drop malformed plan entries, reset inconsistent sleep state, and
// remove orphan relationship/lock references to deleted users.
func Cleanup(w *World) {
	for _, s := range w.NPCSheets {
		cleanupSheet(s)
	}
	for _, u := range w.Users {
		if u.Sheet != nil {
			cleanupSheet(u.Sheet)
		}
	}
	for actorID, rels := range w.Relationships {
		for otherID := range rels {
			if _, ok := w.Users[otherID]; !ok {
				delete(rels, otherID)
			}
		}
		if len(rels) == 0 {
			delete(w.Relationships, actorID)
		}
	}
	for _, room := range w.Rooms {
		for doorName, policy := range room.DoorLocks {
			var keptIDs []EntityID
			for _, id := range policy.AllowIDs {
				if _, ok := w.Users[id]; ok {
					keptIDs = append(keptIDs, id)
				}
			}
			var keptRel []RelationshipGrant
			for _, g := range policy.AllowRel {
				if _, ok := w.Users[g.OtherUserID]; ok {
					keptRel = append(keptRel, g)
				}
			}
			policy.AllowIDs, policy.AllowRel = keptIDs, keptRel
			room.DoorLocks[doorName] = policy
		}
	}
}

func cleanupSheet(s *CharacterSheet) {
	s.Needs.Clamp()
	s.ClampPsychosocial()
	s.ClampAttributes()

	var clean []ActionRecord
	for _, a := range s.Planner.PlanQueue {
		if a.WellFormed() {
			clean = append(clean, a)
		}
	}
	s.Planner.PlanQueue = clean

	if (s.Planner.SleepingTicksRemaining > 0) != (s.Planner.SleepingBedUUID != "") {
		s.Planner.SleepingTicksRemaining = 0
		s.Planner.SleepingBedUUID = ""
	}
	if s.Planner.ActionPoints < 0 {
		s.Planner.ActionPoints = 0
	}
}
