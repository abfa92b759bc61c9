package game

import "fmt"

// CreateRoom adds a new room with a unique id (§4.F Room service: create).
func CreateRoom(w *World, id RoomID, displayName, description string) (*Room, error) {
	if id == "" {
		return nil, newValidationError("a room id is required.")
	}
	if _, exists := w.Rooms[id]; exists {
		return nil, newConstraintError(fmt.Sprintf("room %q already exists.", id))
	}
	r := NewRoom(id, displayName, description)
	w.Rooms[id] = r
	return r, nil
}

// SetRoomDescription updates a room's description (§6.4 /room setdesc).
func SetRoomDescription(w *World, id RoomID, description string) error {
	r, ok := w.Rooms[id]
	if !ok {
		return newNotFoundError(fmt.Sprintf("no such room %q.", id))
	}
	r.Description = description
	return nil
}

// uniqueDoorName disambiguates a door name already used on the target side
// for a different destination, appending "(to <source>)" and then a numeric
// suffix if that too collides (§4.F Room service: link doors).
func uniqueDoorName(target *Room, wanted string, source RoomID) string {
	if _, taken := target.Doors[wanted]; !taken {
		return wanted
	}
	candidate := fmt.Sprintf("%s (to %s)", wanted, source)
	if _, taken := target.Doors[candidate]; !taken {
		return candidate
	}
	for n := 2; ; n++ {
		c := fmt.Sprintf("%s (to %s) %d", wanted, source, n)
		if _, taken := target.Doors[c]; !taken {
			return c
		}
	}
}

// LinkDoors creates a reciprocal pair of doors between two rooms, each
// backed by a Travel Point Object so Room.doors/door_ids/objects stay in
// tri-agreement (§4.F, §4.J check 3).
func LinkDoors(w *World, sourceID RoomID, doorName string, targetID RoomID, reverseName string) error {
	source, ok := w.Rooms[sourceID]
	if !ok {
		return newNotFoundError(fmt.Sprintf("no such room %q.", sourceID))
	}
	target, ok := w.Rooms[targetID]
	if !ok {
		return newNotFoundError(fmt.Sprintf("no such room %q.", targetID))
	}

	forwardName := doorName
	if _, taken := source.Doors[forwardName]; taken {
		forwardName = uniqueDoorName(source, forwardName, targetID)
	}
	backName := uniqueDoorName(target, reverseName, sourceID)

	forwardObj := &Object{
		ID:             NewEntityID(),
		DisplayName:    forwardName,
		Description:    fmt.Sprintf("A doorway named '%s'.", forwardName),
		Tags:           []string{TagImmovable, TagTravelPoint},
		LinkTargetRoom: targetID,
	}
	backObj := &Object{
		ID:             NewEntityID(),
		DisplayName:    backName,
		Description:    fmt.Sprintf("A doorway named '%s'.", backName),
		Tags:           []string{TagImmovable, TagTravelPoint},
		LinkTargetRoom: sourceID,
	}

	source.Doors[forwardName] = targetID
	source.DoorIDs[forwardName] = forwardObj.ID
	source.Objects[forwardObj.ID] = forwardObj

	target.Doors[backName] = sourceID
	target.DoorIDs[backName] = backObj.ID
	target.Objects[backObj.ID] = backObj

	return nil
}

// UnlinkDoor removes a door and its reciprocal from both sides (§4.F Room
// service: unlink doors).
func UnlinkDoor(w *World, roomID RoomID, doorName string) error {
	r, ok := w.Rooms[roomID]
	if !ok {
		return newNotFoundError(fmt.Sprintf("no such room %q.", roomID))
	}
	targetID, ok := r.Doors[doorName]
	doorObjID := r.DoorIDs[doorName]
	if !ok {
		return newNotFoundError(fmt.Sprintf("no such door %q.", doorName))
	}
	delete(r.Doors, doorName)
	delete(r.DoorIDs, doorName)
	delete(r.Objects, doorObjID)
	delete(r.DoorLocks, doorName)

	if target, ok := w.Rooms[targetID]; ok {
		for name, dest := range target.Doors {
			if dest == roomID {
				if id, ok := target.DoorIDs[name]; ok {
					delete(target.Objects, id)
				}
				delete(target.Doors, name)
				delete(target.DoorIDs, name)
				delete(target.DoorLocks, name)
			}
		}
	}
	return nil
}

// SetStairs wires a reciprocal up/down stair pair between two rooms (§4.F
// Room service: set-stairs).
func SetStairs(w *World, lowerID, upperID RoomID) error {
	lower, ok := w.Rooms[lowerID]
	if !ok {
		return newNotFoundError(fmt.Sprintf("no such room %q.", lowerID))
	}
	upper, ok := w.Rooms[upperID]
	if !ok {
		return newNotFoundError(fmt.Sprintf("no such room %q.", upperID))
	}

	upObj := &Object{ID: NewEntityID(), DisplayName: "stairs up", Description: "A staircase leading up.", Tags: []string{TagImmovable, TagTravelPoint}, LinkTargetRoom: upperID}
	downObj := &Object{ID: NewEntityID(), DisplayName: "stairs down", Description: "A staircase leading down.", Tags: []string{TagImmovable, TagTravelPoint}, LinkTargetRoom: lowerID}

	lower.StairsUpTo = upperID
	lower.StairsUpID = upObj.ID
	lower.Objects[upObj.ID] = upObj

	upper.StairsDownTo = lowerID
	upper.StairsDownID = downObj.ID
	upper.Objects[downObj.ID] = downObj

	return nil
}

// LockDoor sets or replaces a door's lock policy (§6.4 /room lockdoor).
func LockDoor(w *World, roomID RoomID, doorName string, policy LockPolicy) error {
	r, ok := w.Rooms[roomID]
	if !ok {
		return newNotFoundError(fmt.Sprintf("no such room %q.", roomID))
	}
	if _, ok := r.Doors[doorName]; !ok && doorName != "stairs up" && doorName != "stairs down" {
		return newNotFoundError(fmt.Sprintf("no such door %q.", doorName))
	}
	r.DoorLocks[doorName] = policy
	return nil
}

// CreateObjectFromTemplate deep-copies a registered template with a fresh
// UUID (§4.F Object service: create from template).
func CreateObjectFromTemplate(w *World, templateKey string) (*Object, error) {
	tmpl, ok := w.ObjectTemplates[templateKey]
	if !ok {
		return nil, newNotFoundError(fmt.Sprintf("no such object template %q.", templateKey))
	}
	obj := tmpl.Object.Clone()
	obj.ID = NewEntityID()
	return obj, nil
}

// DeleteObjectTemplate removes a registered template (§4.F Object service:
// delete template).
func DeleteObjectTemplate(w *World, templateKey string) error {
	if _, ok := w.ObjectTemplates[templateKey]; !ok {
		return newNotFoundError(fmt.Sprintf("no such object template %q.", templateKey))
	}
	delete(w.ObjectTemplates, templateKey)
	return nil
}

// RegisterObjectTemplate adds or replaces a named object template, used by
// admin tooling and by world bootstrap.
func RegisterObjectTemplate(w *World, key string, obj Object) {
	w.ObjectTemplates[key] = &ObjectTemplate{Key: key, Object: obj}
}
