package game

// Inventory is a fixed 8-slot sequence: 0 = left hand, 1 = right hand,
// 2-5 = small-stow, 6-7 = large-stow (§3.1).
type Inventory struct {
	Slots [8]*Object `json:"slots"`
}

const (
	slotHandLeft  = 0
	slotHandRight = 1
	firstSmallStow = 2
	lastSmallStow  = 5
	firstLargeStow = 6
	lastLargeStow  = 7
)

// Find returns the slot index holding the given object UUID, or -1.
func (inv *Inventory) Find(id EntityID) int {
	for i, o := range inv.Slots {
		if o != nil && o.ID == id {
			return i
		}
	}
	return -1
}

// Objects returns every non-empty slot's object.
func (inv *Inventory) Objects() []*Object {
	out := make([]*Object, 0, len(inv.Slots))
	for _, o := range inv.Slots {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

// Remove clears the slot holding id, if present, and returns the object.
func (inv *Inventory) Remove(id EntityID) *Object {
	idx := inv.Find(id)
	if idx < 0 {
		return nil
	}
	o := inv.Slots[idx]
	inv.Slots[idx] = nil
	return o
}

// bySizeOrder returns the slot-preference order for an object's size class:
// small -> 2..5 then hand 1 then 0; large -> 6..7 then 1 then 0 (§4.F Pick Up).
func bySizeOrder(o *Object) []int {
	if o.sizeClass() == TagLarge {
		return []int{firstLargeStow, lastLargeStow, slotHandRight, slotHandLeft}
	}
	return []int{firstSmallStow, firstSmallStow + 1, firstSmallStow + 2, lastSmallStow, slotHandRight, slotHandLeft}
}

func isStowSlot(idx int) bool {
	return idx >= firstSmallStow && idx <= lastLargeStow
}

func isHandSlot(idx int) bool {
	return idx == slotHandLeft || idx == slotHandRight
}

func slotAccepts(idx int, o *Object) bool {
	switch {
	case isHandSlot(idx):
		return true
	case idx >= firstSmallStow && idx <= lastSmallStow:
		return o.sizeClass() == TagSmall
	case idx >= firstLargeStow && idx <= lastLargeStow:
		return o.sizeClass() == TagLarge
	default:
		return false
	}
}

// PlaceAny finds the first free slot (in size-class preference order) that
// can accept o, places it, and returns the chosen slot index, or -1 if the
// inventory is full for this object's size class.
func (inv *Inventory) PlaceAny(o *Object) int {
	for _, idx := range bySizeOrder(o) {
		if inv.Slots[idx] == nil && slotAccepts(idx, o) {
			inv.Slots[idx] = o
			if isStowSlot(idx) {
				o.addTag(TagStowed)
			} else {
				o.removeTag(TagStowed)
			}
			return idx
		}
	}
	return -1
}

// Full reports whether every slot that could accept o is occupied.
func (inv *Inventory) Full(o *Object) bool {
	for _, idx := range bySizeOrder(o) {
		if inv.Slots[idx] == nil {
			return false
		}
	}
	return true
}

// CountByName returns how many inventory objects have the given display name
// (used by the Craft interaction to check component counts).
func (inv *Inventory) CountByName(name string) int {
	n := 0
	for _, o := range inv.Slots {
		if o != nil && o.DisplayName == name {
			n++
		}
	}
	return n
}
