package game

import "fmt"

// Traverse moves a player through a fuzzily-resolved door/stair name,
// enforcing lock permission and updating both rooms' player sets atomically
// (§4.F Movement service).
func Traverse(w *World, sessionID EntityID, doorQuery string) (fromRoom, toRoom *Room, doorName string, err error) {
	player, ok := w.Players[sessionID]
	if !ok {
		return nil, nil, "", newNotFoundError("you have no body in this world.")
	}
	room, ok := w.Rooms[player.RoomID]
	if !ok {
		return nil, nil, "", newIntegrityError("your room no longer exists.")
	}
	res := Resolve(doorQuery, room.DoorNames())
	if !res.OK {
		return nil, nil, "", res.Err
	}
	name := res.Resolved
	targetID, ok := room.TargetFor(name)
	if !ok {
		return nil, nil, "", newNotFoundError("there's no such way to go.")
	}
	target, ok := w.Rooms[targetID]
	if !ok {
		return nil, nil, "", newIntegrityError(fmt.Sprintf("door %q leads nowhere valid.", name))
	}

	user, ok := w.Users[player.UserID]
	if !ok {
		return nil, nil, "", newIntegrityError("your account no longer exists.")
	}
	policy, hasPolicy := room.LockPolicyFor(name)
	if !CheckDoorPermission(w, policy, hasPolicy, user.UserID) {
		return nil, nil, "", newPermissionError("that way is locked to you.")
	}

	delete(room.Players, string(sessionID))
	target.Players[string(sessionID)] = true
	player.RoomID = targetID

	return room, target, name, nil
}

// TraverseNPC is the analogous move for an autonomous NPC action record
// (§4.H.4 move_through).
func TraverseNPC(w *World, npcName string, doorQuery string) (fromRoom, toRoom *Room, doorName string, err error) {
	var room *Room
	for _, r := range w.Rooms {
		if r.NPCs[npcName] {
			room = r
			break
		}
	}
	if room == nil {
		return nil, nil, "", newNotFoundError("that NPC has no room.")
	}
	res := Resolve(doorQuery, room.DoorNames())
	if !res.OK {
		return nil, nil, "", res.Err
	}
	name := res.Resolved
	targetID, ok := room.TargetFor(name)
	if !ok {
		return nil, nil, "", newNotFoundError("there's no such way to go.")
	}
	target, ok := w.Rooms[targetID]
	if !ok {
		return nil, nil, "", newIntegrityError(fmt.Sprintf("door %q leads nowhere valid.", name))
	}
	npcID := w.NPCIDs[npcName]
	policy, hasPolicy := room.LockPolicyFor(name)
	if !CheckDoorPermission(w, policy, hasPolicy, npcID) {
		return nil, nil, "", newPermissionError("that way is locked.")
	}
	delete(room.NPCs, npcName)
	target.NPCs[npcName] = true
	return room, target, name, nil
}
