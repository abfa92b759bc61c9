package game

import (
	"fmt"
	"strings"
)

// AvailableActions returns the verb set an object's tags afford (§4.F
// Interaction service).
func AvailableActions(o *Object) []string {
	var actions []string
	if !o.HasTag(TagImmovable) {
		actions = append(actions, "Pick Up", "Drop")
	}
	if o.HasTag(TagContainer) {
		actions = append(actions, "Search", "Open")
	}
	if o.HasTag(TagWeapon) {
		actions = append(actions, "Wield")
	}
	if _, ok := o.EdibleAmount(); ok {
		actions = append(actions, "Eat")
	}
	if _, ok := o.DrinkableAmount(); ok {
		actions = append(actions, "Drink")
	}
	if tmpl, ok := o.CraftSpotTemplate(); ok {
		actions = append(actions, "Craft-"+tmpl)
	}
	if o.IsTravelPoint() {
		actions = append(actions, "Move Through")
	}
	actions = append(actions, "Claim", "Unclaim")
	return actions
}

// PickUp transfers obj from room to the sheet's inventory (§4.F Interaction
// service: Pick Up).
func PickUp(room *Room, sheet *CharacterSheet, objID EntityID) (*Object, error) {
	obj, ok := room.Objects[objID]
	if !ok {
		return nil, newNotFoundError("you don't see that here.")
	}
	if obj.HasTag(TagImmovable) {
		return nil, newConstraintError("you can't pick that up.")
	}
	if sheet.Inventory.Full(obj) {
		return nil, newConstraintError("your hands and pockets are full.")
	}
	idx := sheet.Inventory.PlaceAny(obj)
	if idx < 0 {
		return nil, newConstraintError("your hands and pockets are full.")
	}
	delete(room.Objects, objID)
	obj.OwnerUserID = ""
	return obj, nil
}

// Drop moves an inventory object into the current room (§4.F Interaction
// service: Drop).
func Drop(room *Room, sheet *CharacterSheet, objID EntityID) (*Object, error) {
	obj := sheet.Inventory.Remove(objID)
	if obj == nil {
		return nil, newNotFoundError("you aren't carrying that.")
	}
	obj.removeTag(TagStowed)
	room.Objects[objID] = obj
	return obj, nil
}

// Search spawns loot into a container's slots on its first invocation and
// reports "already searched" thereafter (§4.F Interaction service: Search,
// decided open question §9).
func Search(w *World, container *Object) ([]*Object, error) {
	if !container.HasTag(TagContainer) {
		return nil, newValidationError("that isn't a container.")
	}
	if container.Searched {
		return nil, newConstraintError("you've already searched that.")
	}
	container.Searched = true
	var spawned []*Object
	for _, tmpl := range w.ObjectTemplates {
		if !strings.EqualFold(tmpl.Object.LootLocationHint, container.DisplayName) {
			continue
		}
		obj := tmpl.Object.Clone()
		obj.ID = NewEntityID()
		if idx := placeInContainer(container, obj); idx {
			spawned = append(spawned, obj)
		}
	}
	return spawned, nil
}

// placeInContainer appends obj to the container's four internal slots (two
// small, two large), respecting size class, returning false if full.
func placeInContainer(container *Object, obj *Object) bool {
	small, large := 0, 0
	for _, s := range container.Slots {
		if s == nil {
			continue
		}
		if s.sizeClass() == TagLarge {
			large++
		} else {
			small++
		}
	}
	if obj.sizeClass() == TagLarge && large >= 2 {
		return false
	}
	if obj.sizeClass() == TagSmall && small >= 2 {
		return false
	}
	container.Slots = append(container.Slots, obj)
	return true
}

// Open requires a prior search and lists a container's contents (§4.F
// Interaction service: Open).
func Open(container *Object) ([]*Object, error) {
	if !container.HasTag(TagContainer) {
		return nil, newValidationError("that isn't a container.")
	}
	if !container.Searched {
		return nil, newConstraintError("you need to search it first.")
	}
	return container.Slots, nil
}

// Eat/Drink apply nutrition and spawn deconstruct outputs into the room
// (§4.F Interaction service).
func Eat(w *World, room *Room, sheet *CharacterSheet, objID EntityID) error {
	return consume(w, room, sheet, objID, true)
}

func Drink(w *World, room *Room, sheet *CharacterSheet, objID EntityID) error {
	return consume(w, room, sheet, objID, false)
}

func consume(w *World, room *Room, sheet *CharacterSheet, objID EntityID, edible bool) error {
	var obj *Object
	if idx := sheet.Inventory.Find(objID); idx >= 0 {
		obj = sheet.Inventory.Slots[idx]
	} else if o, ok := room.Objects[objID]; ok {
		obj = o
	} else {
		return newNotFoundError("you don't have that.")
	}
	var amount int
	var ok bool
	if edible {
		amount, ok = obj.EdibleAmount()
	} else {
		amount, ok = obj.DrinkableAmount()
	}
	if !ok {
		return newValidationError("that isn't something you can consume that way.")
	}
	if edible {
		sheet.Needs.Hunger = clamp(sheet.Needs.Hunger+float64(amount), 0, 100)
	} else {
		sheet.Needs.Thirst = clamp(sheet.Needs.Thirst+float64(amount), 0, 100)
	}
	sheet.Inventory.Remove(objID)
	delete(room.Objects, objID)
	spawnDeconstructOutputs(w, room, obj)
	return nil
}

func spawnDeconstructOutputs(w *World, room *Room, consumed *Object) {
	for _, key := range consumed.DeconstructRecipe {
		tmpl, ok := w.ObjectTemplates[key]
		if !ok {
			continue
		}
		out := tmpl.Object.Clone()
		out.ID = NewEntityID()
		room.Objects[out.ID] = out
	}
}

// Craft consumes the components a craft-spot template requires, if the
// actor holds them all by display-name count, and returns a new instance of
// the product; the caller places it in the world
// (§4.F Interaction service: Craft spot).
func Craft(w *World, sheet *CharacterSheet, spot *Object) (*Object, error) {
	templateKey, ok := spot.CraftSpotTemplate()
	if !ok {
		return nil, newValidationError("that isn't a craft spot.")
	}
	tmpl, ok := w.ObjectTemplates[templateKey]
	if !ok {
		return nil, newNotFoundError(fmt.Sprintf("unknown craft template %q.", templateKey))
	}
	var missing []string
	need := map[string]int{}
	for _, component := range tmpl.Object.CraftRecipe {
		need[component]++
	}
	for name, count := range need {
		if sheet.Inventory.CountByName(name) < count {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, newConstraintError(fmt.Sprintf("you're missing: %s.", strings.Join(missing, ", ")))
	}
	for name, count := range need {
		for i := 0; i < count; i++ {
			for _, o := range sheet.Inventory.Objects() {
				if o.DisplayName == name {
					sheet.Inventory.Remove(o.ID)
					break
				}
			}
		}
	}
	product := tmpl.Object.Clone()
	product.ID = NewEntityID()
	return product, nil
}

// Claim/Unclaim set or clear an object's owner-user-id (§4.F Interaction
// service, §4.H.4 claim/unclaim action).
func Claim(obj *Object, actorID EntityID) error {
	if obj.OwnerUserID != "" && obj.OwnerUserID != actorID {
		return newPermissionError("that's already claimed.")
	}
	obj.OwnerUserID = actorID
	return nil
}

func Unclaim(obj *Object, actorID EntityID) error {
	if obj.OwnerUserID != actorID {
		return newPermissionError("you don't own that.")
	}
	obj.OwnerUserID = ""
	return nil
}
