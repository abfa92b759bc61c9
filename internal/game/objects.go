package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Recognized semantic tags. Tags are free-form strings; these are the ones
// with affordance-level meaning to the interaction and inventory services.
const (
	TagSmall       = "small"
	TagLarge       = "large"
	TagTravelPoint = "Travel Point"
	TagImmovable   = "Immovable"
	TagContainer   = "Container"
	TagWeapon      = "weapon"
	TagStowed      = "stowed"
	TagBed         = "bed"

	tagEdiblePrefix    = "edible:"
	tagDrinkablePrefix = "drinkable:"
	tagCraftSpotPrefix = "craft spot:"
)

// Object is the single, tag-driven entity type for everything a room or
// inventory can hold: doors, stairs, weapons, containers, food, junk. A
// richer type hierarchy (Weapon/Container/TravelPoint/...) was considered and
// rejected: the spec's affordances are entirely tag-driven, so one struct
// with a semantic tag set maps directly onto it without a parallel variant
// type the tags would have to stay in sync with.
type Object struct {
	ID          EntityID `json:"id"`
	DisplayName string   `json:"display_name"`
	Description string   `json:"description"`

	OwnerUserID    EntityID `json:"owner_user_id,omitempty"`
	LinkTargetRoom RoomID   `json:"link_target_room_id,omitempty"`

	Tags     []string `json:"tags,omitempty"`
	Material string   `json:"material,omitempty"`

	CraftRecipe       []string `json:"craft_recipe,omitempty"`
	DeconstructRecipe []string `json:"deconstruct_recipe,omitempty"`

	Value          int `json:"value,omitempty"`
	WeaponDamage   int `json:"weapon_damage,omitempty"`
	ArmorDefense   int `json:"armor_defense,omitempty"`

	// Searched marks a Container that has already yielded its first-search
	// loot (§4.F Interaction service: Search).
	Searched bool `json:"searched,omitempty"`

	// Slots holds a Container's four internal inventory slots (two small,
	// two large). Nil for non-containers.
	Slots []*Object `json:"slots,omitempty"`

	// LootLocationHint names the container display name that causes object
	// templates to spawn into this container on first search.
	LootLocationHint string `json:"loot_location_hint,omitempty"`
}

// HasTag reports whether the object carries the exact tag (case-sensitive,
// matching the spec's "Recognized semantic tags" table).
func (o *Object) HasTag(tag string) bool {
	for _, t := range o.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (o *Object) addTag(tag string) {
	if o.HasTag(tag) {
		return
	}
	o.Tags = append(o.Tags, tag)
}

func (o *Object) removeTag(tag string) {
	out := o.Tags[:0]
	for _, t := range o.Tags {
		if t != tag {
			out = append(out, t)
		}
	}
	o.Tags = out
}

// numericAffordance parses a "Key: N" tag matched case-insensitively on key,
// returning (value, true) for the first match. Used for Edible/Drinkable.
func numericAffordance(tags []string, keyPrefix string) (int, bool) {
	for _, t := range tags {
		idx := strings.IndexByte(t, ':')
		if idx < 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(t[:idx])) + ":"
		if key != keyPrefix {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(t[idx+1:]))
		if err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}

// EdibleAmount returns the Edible:N affordance, if any.
func (o *Object) EdibleAmount() (int, bool) { return numericAffordance(o.Tags, tagEdiblePrefix) }

// DrinkableAmount returns the Drinkable:N affordance, if any.
func (o *Object) DrinkableAmount() (int, bool) { return numericAffordance(o.Tags, tagDrinkablePrefix) }

// CraftSpotTemplate returns the template key from a "craft spot:<template>"
// tag, if present.
func (o *Object) CraftSpotTemplate() (string, bool) {
	for _, t := range o.Tags {
		lower := strings.ToLower(t)
		if strings.HasPrefix(lower, tagCraftSpotPrefix) {
			return strings.TrimSpace(t[len(tagCraftSpotPrefix):]), true
		}
	}
	return "", false
}

// IsTravelPoint reports whether this object is a well-formed door/stair
// affordance: Travel Point + Immovable + a link target.
func (o *Object) IsTravelPoint() bool {
	return o.HasTag(TagTravelPoint) && o.HasTag(TagImmovable) && o.LinkTargetRoom != ""
}

func (o *Object) sizeClass() string {
	if o.HasTag(TagLarge) {
		return TagLarge
	}
	return TagSmall
}

// Clone deep-copies an object, used when spawning from a template (object
// service "create from template": deep-copy + fresh UUID is applied by the
// caller).
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	cp := *o
	cp.Tags = append([]string(nil), o.Tags...)
	cp.CraftRecipe = append([]string(nil), o.CraftRecipe...)
	cp.DeconstructRecipe = append([]string(nil), o.DeconstructRecipe...)
	if o.Slots != nil {
		cp.Slots = make([]*Object, len(o.Slots))
		for i, s := range o.Slots {
			cp.Slots[i] = s.Clone()
		}
	}
	return &cp
}

func (o *Object) String() string {
	if o == nil {
		return "nothing"
	}
	return fmt.Sprintf("%s (%s)", o.DisplayName, o.ID)
}
