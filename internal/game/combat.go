package game

import "math/rand"

// equippedWeaponDamage/equippedArmorDefense look up a sheet's equipped item
// stats from its own inventory, defaulting to 0 if unequipped or the item
// has since left the inventory.
func equippedWeaponDamage(sheet *CharacterSheet) int {
	if sheet.EquippedWeapon == "" {
		return 0
	}
	idx := sheet.Inventory.Find(sheet.EquippedWeapon)
	if idx < 0 {
		return 0
	}
	return sheet.Inventory.Slots[idx].WeaponDamage
}

func equippedArmorDefense(sheet *CharacterSheet) int {
	if sheet.EquippedArmor == "" {
		return 0
	}
	idx := sheet.Inventory.Find(sheet.EquippedArmor)
	if idx < 0 {
		return 0
	}
	return sheet.Inventory.Slots[idx].ArmorDefense
}

// damage computes `max(1, strength/2 + weapon_damage - armor_defense)`
// (§4.K damage formula).
func damage(attacker, target *CharacterSheet) int {
	dmg := attacker.Strength/2 + equippedWeaponDamage(attacker) - equippedArmorDefense(target)
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// AttackResult reports what an Attack call did, for the command layer to
// turn into emits/broadcasts.
type AttackResult struct {
	Damage     int
	TargetHP   int
	TargetDied bool
	TargetYielded bool
}

// Attack applies one hit from attacker to target (§4.K). Neither side may
// be dead and the attacker may not have yielded; a yielded target still
// takes damage. When the target is an NPC, a morale check after the hit may
// set Yielded.
func Attack(attacker, target *CharacterSheet, targetIsNPC bool) (AttackResult, error) {
	if !attacker.CanAct() {
		return AttackResult{}, newPermissionError("the dead do not fight.")
	}
	if attacker.Yielded {
		return AttackResult{}, newConstraintError("you have yielded; you cannot attack unless you regain morale.")
	}
	if target.IsDead {
		return AttackResult{}, newConstraintError("they're already dead.")
	}

	dmg := damage(attacker, target)
	target.HP -= dmg
	if target.HP < 0 {
		target.HP = 0
	}

	res := AttackResult{Damage: dmg, TargetHP: target.HP}

	if target.HP == 0 {
		target.IsDead = true
		res.TargetDied = true
		return res, nil
	}

	if targetIsNPC {
		lowHP := float64(target.HP) <= 0.3*float64(target.MaxHP)
		moraleRoll := rand.Intn(100) + 1 + target.Morale + target.Personality.Confidence - target.Personality.Aggression
		if lowHP || moraleRoll < 50 {
			target.Yielded = true
			res.TargetYielded = true
		}
	}
	return res, nil
}

// Flee moves a character to a random adjacent room reachable via any
// permitted door/stair/Travel-Point (§4.K Flee, decided open question §9):
// filter by lock permission first, then choose uniformly among the
// permitted set.
func Flee(w *World, room *Room, sheet *CharacterSheet, actorUserID EntityID) (*Room, error) {
	if sheet.IsDead {
		return nil, newPermissionError("the dead cannot flee.")
	}
	if sheet.Yielded {
		return nil, newConstraintError("you have yielded and cannot flee.")
	}
	adjacent := room.AdjacentRoomIDs()
	if len(adjacent) == 0 {
		return nil, newConstraintError("there's nowhere to flee to.")
	}

	var permitted []RoomID
	for _, id := range adjacent {
		name := doorNameTo(room, id)
		policy, hasPolicy := room.LockPolicyFor(name)
		if CheckDoorPermission(w, policy, hasPolicy, actorUserID) {
			permitted = append(permitted, id)
		}
	}
	if len(permitted) == 0 {
		return nil, newConstraintError("there's nowhere you're permitted to flee to.")
	}

	dest := permitted[rand.Intn(len(permitted))]
	target, ok := w.Rooms[dest]
	if !ok {
		return nil, newIntegrityError("flee destination no longer exists.")
	}
	return target, nil
}

func doorNameTo(room *Room, target RoomID) string {
	for name, to := range room.Doors {
		if to == target {
			return name
		}
	}
	if room.StairsUpTo == target {
		return "stairs up"
	}
	if room.StairsDownTo == target {
		return "stairs down"
	}
	return ""
}

// NPCAutonomousAttack lets a faction-hostile NPC invoke the same Attack
// entry point player combat uses, attacker and target both NPCs (§4.H.2
// faction-driven hostility, §4.K faction rivalry hook, grounded in
// combat_service.py: npc_autonomous_attack).
func NPCAutonomousAttack(attacker, target *CharacterSheet) (AttackResult, error) {
	return Attack(attacker, target, true)
}
