package game

// CheckDoorPermission evaluates a door/stair's lock policy against the
// acting user (§4.G). Absence of a configured policy means unlocked. A
// configured policy with both allow-lists empty denies unconditionally,
// and a relationship grant is honored only while the named other user
// still exists — a deleted account silently drops the grant rather than
// widening it.
func CheckDoorPermission(w *World, policy LockPolicy, hasPolicy bool, actorUserID EntityID) bool {
	if !hasPolicy {
		return true
	}
	for _, id := range policy.AllowIDs {
		if id == actorUserID {
			return true
		}
	}
	if len(policy.AllowIDs) == 0 && len(policy.AllowRel) == 0 {
		return false
	}
	byActor, ok := w.Relationships[actorUserID]
	if !ok {
		return false
	}
	for _, grant := range policy.AllowRel {
		if _, exists := w.Users[grant.OtherUserID]; !exists {
			continue
		}
		if byActor[grant.OtherUserID] == grant.RelationshipType {
			return true
		}
	}
	return false
}
