package game

import (
	"context"
	"log/slog"
	"sort"
	"time"
)

// TickConfig bundles the tunable rates driving needs decay, AP regeneration,
// and planning (§4.H.1, §6.5).
type TickConfig struct {
	APMax         int
	NeedDrop      float64
	SocialDrop    float64
	SocialRefill  float64
	SocialSimTick float64
	SleepDrop     float64
	SleepRefill   float64
	SleepTicks    int
	NeedThreshold float64
}

// DefaultTickConfig matches §6.5's documented defaults.
func DefaultTickConfig() TickConfig {
	return TickConfig{
		APMax: 3, NeedDrop: 1.0, SocialDrop: 0.5, SocialRefill: 10,
		SocialSimTick: 5, SleepDrop: 0.75, SleepRefill: 10, SleepTicks: 3,
		NeedThreshold: 50,
	}
}

// decayNeeds ages one NPC's needs by a single tick (§4.H.1).
func decayNeeds(sheet *CharacterSheet, cfg TickConfig, alone bool) {
	sheet.Needs.Hunger -= cfg.NeedDrop
	sheet.Needs.Thirst -= cfg.NeedDrop
	if alone {
		sheet.Needs.Socialization -= cfg.SocialDrop
	} else {
		sheet.Needs.Socialization += cfg.SocialSimTick
	}
	if sheet.Planner.SleepingTicksRemaining > 0 {
		sheet.Needs.Sleep += cfg.SleepRefill
	} else {
		sheet.Needs.Sleep -= cfg.SleepDrop
	}
	sheet.Needs.Clamp()

	sheet.Planner.ActionPoints = clampInt(sheet.Planner.ActionPoints+1, 0, cfg.APMax)
}

// AIAdapter is the single external interface §4.L realizes concretely.
type AIAdapter interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// StepNPC runs one full tick of §4.H for a single NPC: sleep handling,
// needs decay, AP regen, autonomy override, planning, and execution of up
// to APMax actions. It returns the emission lines produced, in execution
// order (§5 ordering guarantee).
func StepNPC(ctx context.Context, w *World, npcName string, cfg TickConfig, adapter AIAdapter, aiMaxResponseLen int, aiTimeout time.Duration, log *slog.Logger) []string {
	sheet, ok := w.NPCSheets[npcName]
	if !ok || sheet.IsDead {
		return nil
	}
	var room *Room
	for _, r := range w.Rooms {
		if r.NPCs[npcName] {
			room = r
			break
		}
	}
	if room == nil {
		return nil
	}

	alone := len(room.Players)+len(room.NPCs) <= 1
	decayNeeds(sheet, cfg, alone)

	if sheet.Planner.SleepingTicksRemaining > 0 {
		sheet.Planner.SleepingTicksRemaining--
		if sheet.Planner.SleepingTicksRemaining == 0 {
			sheet.Planner.SleepingBedUUID = ""
		}
		return nil
	}

	if len(sheet.Planner.PlanQueue) == 0 {
		if override, ok := EvaluateAutonomy(w, npcName, sheet, room); ok {
			sheet.Planner.PlanQueue = append([]ActionRecord{override}, sheet.Planner.PlanQueue...)
		} else if sheet.Needs.Lowest() != "" && needBelowThreshold(sheet, cfg.NeedThreshold) {
			sheet.Planner.PlanQueue = think(ctx, w, npcName, sheet, room, adapter, aiMaxResponseLen, aiTimeout, log)
		}
	}

	var lines []string
	for sheet.Planner.ActionPoints > 0 && len(sheet.Planner.PlanQueue) > 0 {
		action := sheet.Planner.PlanQueue[0]
		sheet.Planner.PlanQueue = sheet.Planner.PlanQueue[1:]
		sheet.Planner.ActionPoints--
		if !action.WellFormed() {
			sheet.Planner.PlanQueue = nil
			log.Warn("dropped malformed plan entry", "npc", npcName, "tool", action.Tool)
			break
		}
		line, err := ExecuteAction(w, npcName, sheet, room, action, cfg.SleepTicks)
		if err != nil {
			log.Debug("npc action failed", "npc", npcName, "tool", action.Tool, "error", err)
			continue
		}
		lines = append(lines, line)
		if sheet.Planner.SleepingTicksRemaining > 0 {
			break
		}
	}
	lines = append(lines, w.Scripts.RunNPCBehavior(npcName, sheet)...)
	return lines
}

func needBelowThreshold(sheet *CharacterSheet, threshold float64) bool {
	n := sheet.Needs
	return n.Hunger < threshold || n.Thirst < threshold || n.Socialization < threshold || n.Sleep < threshold
}

// think picks the AI path when gated and available, else the offline path
// (§4.H.3).
func think(ctx context.Context, w *World, npcName string, sheet *CharacterSheet, room *Room, adapter AIAdapter, maxResponseLen int, aiTimeout time.Duration, log *slog.Logger) []ActionRecord {
	if w.AdvancedGOAPEnabled && adapter != nil && len(room.Players) > 0 {
		plan, err := planViaAdapter(ctx, w, npcName, sheet, room, adapter, maxResponseLen, aiTimeout)
		if err == nil && len(plan) > 0 {
			return plan
		}
		log.Debug("ai plan fell back to offline", "npc", npcName, "error", err)
	}
	return GenerateOfflinePlan(sheet, room, w.NPCIDs[npcName])
}

// RunTick steps every NPC across the world in deterministic order (sorted
// by room-id, then NPC name), §4.I. Returns per-NPC emission lines keyed by
// the room the NPC occupied at the start of the tick, so the caller can
// broadcast to the right audience.
type TickEmission struct {
	RoomID RoomID
	NPC    string
	Lines  []string
}

func RunTick(ctx context.Context, w *World, cfg TickConfig, adapter AIAdapter, aiMaxResponseLen int, aiTimeout time.Duration, log *slog.Logger) []TickEmission {
	type namedNPC struct {
		room RoomID
		name string
	}
	var ordered []namedNPC
	roomIDs := make([]RoomID, 0, len(w.Rooms))
	for id := range w.Rooms {
		roomIDs = append(roomIDs, id)
	}
	sort.Slice(roomIDs, func(i, j int) bool { return roomIDs[i] < roomIDs[j] })
	for _, rid := range roomIDs {
		room := w.Rooms[rid]
		names := make([]string, 0, len(room.NPCs))
		for name := range room.NPCs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			ordered = append(ordered, namedNPC{rid, name})
		}
	}

	var emissions []TickEmission
	for _, n := range ordered {
		lines := StepNPC(ctx, w, n.name, cfg, adapter, aiMaxResponseLen, aiTimeout, log)
		if len(lines) > 0 {
			emissions = append(emissions, TickEmission{RoomID: n.room, NPC: n.name, Lines: lines})
		}
	}
	return emissions
}

// ClearAllPlanQueues drops every NPC's in-flight plan, used when
// advanced_goap_enabled toggles so a stale AI plan never outlives the mode
// switch (§4.I).
func ClearAllPlanQueues(w *World) {
	for _, sheet := range w.NPCSheets {
		sheet.Planner.PlanQueue = nil
	}
}
