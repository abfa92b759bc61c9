package game

import (
	"context"
	"strconv"
	"strings"
)

// AddNPC creates a new NPC sheet in roomID under name, which must be unique
// across the world (§4.F NPC service: add).
func AddNPC(w *World, roomID RoomID, name, description string) (*CharacterSheet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newValidationError("npc name must not be blank.")
	}
	room, ok := w.Rooms[roomID]
	if !ok {
		return nil, newNotFoundError("no such room.")
	}
	if _, exists := w.NPCIDs[name]; exists {
		return nil, newConstraintError("an npc with that name already exists.")
	}

	sheet := NewCharacterSheet(name, description)
	id := NewEntityID()
	w.NPCSheets[name] = sheet
	w.NPCIDs[name] = id
	room.NPCs[name] = true
	return sheet, nil
}

// RemoveNPC deletes an NPC from roomID and the world (§4.F NPC service:
// remove).
func RemoveNPC(w *World, roomID RoomID, name string) error {
	room, ok := w.Rooms[roomID]
	if !ok {
		return newNotFoundError("no such room.")
	}
	if !room.NPCs[name] {
		return newNotFoundError("no such npc here.")
	}
	delete(room.NPCs, name)
	delete(w.NPCSheets, name)
	delete(w.NPCIDs, name)
	return nil
}

func findNPCSheet(w *World, name string) (*CharacterSheet, error) {
	sheet, ok := w.NPCSheets[name]
	if !ok {
		return nil, newNotFoundError("no such npc.")
	}
	return sheet, nil
}

// SetNPCDescription updates an NPC's description.
func SetNPCDescription(w *World, name, description string) error {
	sheet, err := findNPCSheet(w, name)
	if err != nil {
		return err
	}
	sheet.Description = description
	return nil
}

// SetNPCAttribute sets one GURPS-style attribute or derived stat by key
// (§4.F NPC service: set-attribute).
func SetNPCAttribute(w *World, name, key, value string) error {
	sheet, err := findNPCSheet(w, name)
	if err != nil {
		return err
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(value))
	if convErr != nil {
		return newValidationError("attribute value must be an integer.")
	}
	switch strings.ToLower(key) {
	case "strength":
		sheet.Strength = n
	case "dexterity":
		sheet.Dexterity = n
	case "intelligence":
		sheet.Intelligence = n
	case "health":
		sheet.Health = n
	case "hp":
		sheet.HP = n
	case "max_hp":
		sheet.MaxHP = n
	case "will":
		sheet.Will = n
	case "perception":
		sheet.Perception = n
	case "fp":
		sheet.FP = n
	case "max_fp":
		sheet.MaxFP = n
	case "morale":
		sheet.Morale = n
	default:
		return newValidationError("unknown attribute " + key)
	}
	sheet.ClampAttributes()
	return nil
}

// SetNPCAspect sets one Fate-style narrative aspect by key (§4.F NPC
// service: set-aspect).
func SetNPCAspect(w *World, name, key, value string) error {
	sheet, err := findNPCSheet(w, name)
	if err != nil {
		return err
	}
	switch strings.ToLower(key) {
	case "high_concept":
		sheet.Aspects.HighConcept = value
	case "trouble":
		sheet.Aspects.Trouble = value
	case "background":
		sheet.Aspects.Background = value
	case "focus":
		sheet.Aspects.Focus = value
	default:
		return newValidationError("unknown aspect " + key)
	}
	return nil
}

// SetNPCMatrix sets one of the 11 psychosocial axes by index (§4.F NPC
// service: set-matrix).
func SetNPCMatrix(w *World, name string, axis, value int) error {
	sheet, err := findNPCSheet(w, name)
	if err != nil {
		return err
	}
	if axis < 0 || axis >= psychosocialAxisCount {
		return newValidationError("axis out of range.")
	}
	sheet.PsychosocialMatrix[axis] = value
	sheet.ClampPsychosocial()
	return nil
}

// GenerateNPC creates an NPC whose description comes from the AI adapter
// when none is supplied explicitly. On adapter failure no NPC is created
// (§4.F NPC service: "on AI failure, no NPC is created and an error is
// reported").
func GenerateNPC(ctx context.Context, w *World, roomID RoomID, name, description string, adapter AIAdapter, maxResponseLen int) (*CharacterSheet, error) {
	if strings.TrimSpace(description) != "" {
		return AddNPC(w, roomID, name, description)
	}
	if adapter == nil {
		return nil, newAdapterError("no ai adapter configured for npc generation.")
	}
	prompt := "Generate a one-paragraph description for a text-adventure NPC named " + name + "."
	raw, err := adapter.Generate(ctx, prompt, 256)
	if err != nil {
		return nil, wrapKindError(KindAdapter, "generate npc description", err)
	}
	if len(raw) > maxResponseLen {
		raw = raw[:maxResponseLen]
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, newAdapterError("ai returned an empty description.")
	}
	return AddNPC(w, roomID, name, raw)
}
