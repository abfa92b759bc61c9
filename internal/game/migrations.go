package game

import (
	"fmt"
	"log/slog"
	"sort"
)

// migrationDoc is the raw JSON document tree a migration rewrites in place,
// before it is unmarshaled into a *World (§3.4, §4.A). Working on the
// untyped tree — rather than the typed World struct — lets an old save
// missing fields entirely (rather than merely zero-valued) get real
// defaults, mirroring the dict-rewriting registry it is grounded on.
type migrationDoc map[string]any

// migration is one versioned, idempotent transform from schema version-1 to
// version.
type migration struct {
	version     int
	description string
	apply       func(migrationDoc)
}

// migrationRegistry runs the ordered migration set against a loaded document
// before it is unmarshaled into a *World.
type migrationRegistry struct {
	byVersion map[int]migration
}

func newMigrationRegistry() *migrationRegistry {
	r := &migrationRegistry{byVersion: map[int]migration{}}
	for _, m := range []migration{
		{1, "add world_version field", migrateAddWorldVersion},
		{2, "backfill needs system defaults", migrateBackfillNeeds},
		{3, "consolidate uuids", migrateConsolidateUUIDs},
		{4, "ensure travel point objects for doors and stairs", migrateEnsureTravelObjects},
	} {
		if _, dup := r.byVersion[m.version]; dup {
			panic(fmt.Sprintf("duplicate migration version %d", m.version))
		}
		r.byVersion[m.version] = m
	}
	return r
}

func (r *migrationRegistry) latestVersion() int {
	max := 0
	for v := range r.byVersion {
		if v > max {
			max = v
		}
	}
	return max
}

func currentVersion(doc migrationDoc) int {
	v, ok := doc["world_version"]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

// migrateToLatest applies every pending migration in order, logging progress
// the way the teacher logs long-running startup work.
func (r *migrationRegistry) migrateToLatest(doc migrationDoc, log *slog.Logger) error {
	target := r.latestVersion()
	current := currentVersion(doc)
	if current == target {
		return nil
	}
	if current > target {
		return newIntegrityError(fmt.Sprintf("world data version %d is newer than latest known version %d", current, target))
	}
	versions := make([]int, 0, target-current)
	for v := current + 1; v <= target; v++ {
		versions = append(versions, v)
	}
	sort.Ints(versions)
	for _, v := range versions {
		m, ok := r.byVersion[v]
		if !ok {
			return newIntegrityError(fmt.Sprintf("no migration registered for version %d", v))
		}
		log.Info("applying world migration", "version", v, "description", m.description)
		m.apply(doc)
		doc["world_version"] = v
	}
	return nil
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func setDefault(m map[string]any, key string, def any) {
	if _, ok := m[key]; !ok {
		m[key] = def
	}
}

func safeFloat(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return def
	}
}

func safeInt(v any, def int) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return def
	}
}

func migrateAddWorldVersion(doc migrationDoc) {
	doc["world_version"] = 1
}

func backfillNeedsOnSheet(sheet map[string]any) {
	setDefault(sheet, "hunger", 100.0)
	setDefault(sheet, "thirst", 100.0)
	setDefault(sheet, "socialization", 100.0)
	setDefault(sheet, "sleep", 100.0)
	setDefault(sheet, "sleeping_ticks_remaining", 0)
	setDefault(sheet, "sleeping_bed_uuid", nil)
	setDefault(sheet, "action_points", 0)
	if _, ok := sheet["plan_queue"]; !ok {
		sheet["plan_queue"] = []any{}
	}
	sheet["hunger"] = safeFloat(sheet["hunger"], 100.0)
	sheet["thirst"] = safeFloat(sheet["thirst"], 100.0)
	sheet["socialization"] = safeFloat(sheet["socialization"], 100.0)
	sheet["sleep"] = safeFloat(sheet["sleep"], 100.0)
	sheet["sleeping_ticks_remaining"] = safeInt(sheet["sleeping_ticks_remaining"], 0)
	sheet["action_points"] = safeInt(sheet["action_points"], 0)
}

func migrateBackfillNeeds(doc migrationDoc) {
	if npcSheets, ok := asMap(doc["npc_sheets"]); ok {
		for _, raw := range npcSheets {
			if sheet, ok := asMap(raw); ok {
				backfillNeedsOnSheet(sheet)
			}
		}
	}
	if users, ok := asMap(doc["users"]); ok {
		for _, raw := range users {
			userData, ok := asMap(raw)
			if !ok {
				continue
			}
			sheet, ok := asMap(userData["sheet"])
			if !ok {
				continue
			}
			backfillNeedsOnSheet(sheet)
		}
	}
}

// migrateConsolidateUUIDs ensures every room, object and NPC carries a
// stable uuid field rather than relying on display-name identity, generating
// one deterministically-absent-but-present-once value where missing.
func migrateConsolidateUUIDs(doc migrationDoc) {
	rooms, ok := asMap(doc["rooms"])
	if !ok {
		return
	}
	for _, raw := range rooms {
		room, ok := asMap(raw)
		if !ok {
			continue
		}
		if s, ok := room["uuid"].(string); !ok || s == "" {
			room["uuid"] = string(NewEntityID())
		}
		if objects, ok := asMap(room["objects"]); ok {
			for _, oraw := range objects {
				obj, ok := asMap(oraw)
				if !ok {
					continue
				}
				if s, ok := obj["uuid"].(string); !ok || s == "" {
					obj["uuid"] = string(NewEntityID())
				}
			}
		}
	}
	if npcIDs, ok := asMap(doc["npc_ids"]); ok {
		_ = npcIDs // already keyed by uuid; nothing to backfill
	} else if npcSheets, ok := asMap(doc["npc_sheets"]); ok {
		ids := map[string]any{}
		for name := range npcSheets {
			ids[name] = string(NewEntityID())
		}
		doc["npc_ids"] = ids
	}
}

func travelPointObject(displayName, description string, target any) map[string]any {
	return map[string]any{
		"display_name":       displayName,
		"description":        description,
		"object_tag":         []any{TagImmovable, TagTravelPoint},
		"link_target_room_id": target,
	}
}

func ensureTravelTags(obj map[string]any, target any) {
	tags, _ := obj["object_tag"].([]any)
	has := func(tag string) bool {
		for _, t := range tags {
			if s, ok := t.(string); ok && s == tag {
				return true
			}
		}
		return false
	}
	if !has(TagImmovable) {
		tags = append(tags, TagImmovable)
	}
	if !has(TagTravelPoint) {
		tags = append(tags, TagTravelPoint)
	}
	obj["object_tag"] = tags
	if s, ok := obj["link_target_room_id"].(string); !ok || s == "" {
		obj["link_target_room_id"] = target
	}
}

// migrateEnsureTravelObjects backfills first-class Object entries for doors
// and stairs that older saves recorded only as room metadata, so every
// traversal target is uniformly a tagged Object (§3.1, §4.F).
func migrateEnsureTravelObjects(doc migrationDoc) {
	rooms, ok := asMap(doc["rooms"])
	if !ok {
		return
	}
	for _, raw := range rooms {
		room, ok := asMap(raw)
		if !ok {
			continue
		}
		objects, ok := asMap(room["objects"])
		if !ok {
			objects = map[string]any{}
			room["objects"] = objects
		}
		doors, _ := asMap(room["doors"])
		doorIDs, _ := asMap(room["door_ids"])
		for doorName, target := range doors {
			doorID, _ := doorIDs[doorName].(string)
			if doorID == "" {
				continue
			}
			if existing, ok := asMap(objects[doorID]); ok {
				ensureTravelTags(existing, target)
				continue
			}
			objects[doorID] = travelPointObject(doorName, fmt.Sprintf("A doorway named '%s'.", doorName), target)
		}
		if upTo, upID := room["stairs_up_to"], room["stairs_up_id"]; upTo != nil && upID != nil {
			id, _ := upID.(string)
			if id != "" {
				if existing, ok := asMap(objects[id]); ok {
					ensureTravelTags(existing, upTo)
				} else {
					objects[id] = travelPointObject("stairs up", "A staircase leading up.", upTo)
				}
			}
		}
		if downTo, downID := room["stairs_down_to"], room["stairs_down_id"]; downTo != nil && downID != nil {
			id, _ := downID.(string)
			if id != "" {
				if existing, ok := asMap(objects[id]); ok {
					ensureTravelTags(existing, downTo)
				} else {
					objects[id] = travelPointObject("stairs down", "A staircase leading down.", downTo)
				}
			}
		}
	}
}
