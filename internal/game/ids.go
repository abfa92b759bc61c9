package game

import "github.com/google/uuid"

// EntityID is a stable, globally-unique identifier for any persistent entity:
// rooms, objects, users, NPCs. UUIDs are preserved across saves so that
// references (owner ids, link targets, relationship keys) remain valid.
type EntityID string

// NewEntityID mints a fresh random identifier.
func NewEntityID() EntityID {
	return EntityID(uuid.NewString())
}

// ValidEntityID reports whether s is a syntactically well-formed UUID.
func ValidEntityID(s EntityID) bool {
	_, err := uuid.Parse(string(s))
	return err == nil
}

// RoomID is the short, human-chosen opaque key identifying a room (distinct
// from the room's EntityID, which exists purely for UUID-uniqueness checks).
type RoomID string
