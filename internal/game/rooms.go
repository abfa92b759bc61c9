package game

// LockPolicy gates traversal of a single door (§4.G).
type LockPolicy struct {
	AllowIDs []EntityID          `json:"allow_ids,omitempty"`
	AllowRel []RelationshipGrant `json:"allow_rel,omitempty"`
}

// RelationshipGrant is one (relationship-type, other-user-id) entry in a
// door's allow_rel list.
type RelationshipGrant struct {
	RelationshipType string   `json:"relationship_type"`
	OtherUserID      EntityID `json:"other_user_id"`
}

// Room tags (§3.1); optional and purely descriptive except where a service
// checks them.
const (
	RoomTagExternal = "external"
	RoomTagInternal = "internal"
	RoomTagOwnable  = "ownable"
)

// Room is identified by a short opaque id plus a UUID (§3.1).
type Room struct {
	ID          RoomID   `json:"id"`
	UUID        EntityID `json:"uuid"`
	DisplayName string   `json:"display_name"`
	Description string   `json:"description"`

	Players map[string]bool `json:"players,omitempty"` // session-id set
	NPCs    map[string]bool `json:"npcs,omitempty"`    // NPC display-name set

	Doors   map[string]RoomID   `json:"doors,omitempty"`
	DoorIDs map[string]EntityID `json:"door_ids,omitempty"`

	StairsUpTo   RoomID   `json:"stairs_up_to,omitempty"`
	StairsUpID   EntityID `json:"stairs_up_id,omitempty"`
	StairsDownTo RoomID   `json:"stairs_down_to,omitempty"`
	StairsDownID EntityID `json:"stairs_down_id,omitempty"`

	Objects map[EntityID]*Object `json:"objects,omitempty"`

	Tags []string `json:"tags,omitempty"`

	DoorLocks map[string]LockPolicy `json:"door_locks,omitempty"`
}

// NewRoom constructs an empty room with initialized maps.
func NewRoom(id RoomID, displayName, description string) *Room {
	return &Room{
		ID:          id,
		UUID:        NewEntityID(),
		DisplayName: displayName,
		Description: description,
		Players:     map[string]bool{},
		NPCs:        map[string]bool{},
		Doors:       map[string]RoomID{},
		DoorIDs:     map[string]EntityID{},
		Objects:     map[EntityID]*Object{},
		DoorLocks:   map[string]LockPolicy{},
	}
}

// HasTag reports whether the room carries the given tag.
func (r *Room) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// DoorNames returns the sorted-by-caller door name set, used by the fuzzy
// resolver (§4.C) when a player names a door/stair.
func (r *Room) DoorNames() []string {
	names := make([]string, 0, len(r.Doors)+2)
	for name := range r.Doors {
		names = append(names, name)
	}
	if r.StairsUpTo != "" {
		names = append(names, "stairs up")
	}
	if r.StairsDownTo != "" {
		names = append(names, "stairs down")
	}
	return names
}

// TargetFor resolves a resolved door/stair name to its destination room id.
func (r *Room) TargetFor(name string) (RoomID, bool) {
	switch name {
	case "stairs up":
		if r.StairsUpTo != "" {
			return r.StairsUpTo, true
		}
	case "stairs down":
		if r.StairsDownTo != "" {
			return r.StairsDownTo, true
		}
	}
	if to, ok := r.Doors[name]; ok {
		return to, true
	}
	return "", false
}

// AdjacentRoomIDs returns every room reachable via a door, stair, or loose
// Travel Point object in this room (used by combat flee, §4.K).
func (r *Room) AdjacentRoomIDs() []RoomID {
	seen := map[RoomID]bool{}
	var out []RoomID
	add := func(id RoomID) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, to := range r.Doors {
		add(to)
	}
	add(r.StairsUpTo)
	add(r.StairsDownTo)
	for _, o := range r.Objects {
		if o.IsTravelPoint() {
			add(o.LinkTargetRoom)
		}
	}
	return out
}

// LockPolicyFor returns the lock policy guarding a door/stair by resolved
// name, and whether one is configured (absence means unlocked).
func (r *Room) LockPolicyFor(name string) (LockPolicy, bool) {
	p, ok := r.DoorLocks[name]
	return p, ok
}

// Faction is the supplement entity driving autonomous NPC rivalry combat
// (§3.1, §4.H.2, §4.K).
type Faction struct {
	ID          EntityID            `json:"id"`
	DisplayName string              `json:"display_name"`
	Rivals      map[EntityID]bool   `json:"rivals,omitempty"`
}

// IsRival reports whether otherID is a recorded rival of this faction.
func (f *Faction) IsRival(otherID EntityID) bool {
	if f == nil || otherID == f.ID {
		return false
	}
	return f.Rivals[otherID]
}
