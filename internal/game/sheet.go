package game

// Psychosocial matrix axes (§3.1, GLOSSARY): 11 opposing-trait axes, each
// clamped to [-10, +10].
const psychosocialAxisCount = 11

// ActionRecord is one element of an NPC's plan queue (§4.H.4): a tool name
// and its arguments.
type ActionRecord struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// WellFormed reports whether this action record has the shape the planner
// and executor require (§4.H.6: malformed entries cause a replan).
func (a ActionRecord) WellFormed() bool {
	if a.Tool == "" {
		return false
	}
	switch a.Tool {
	case "get_object", "consume_object", "emote", "claim", "unclaim", "sleep", "do_nothing", "move_through":
		return true
	default:
		return false
	}
}

// PlannerState is the GOAP bookkeeping carried on every CharacterSheet (NPCs
// use it actively; player sheets carry it at its zero value).
type PlannerState struct {
	ActionPoints           int            `json:"action_points"`
	PlanQueue              []ActionRecord `json:"plan_queue,omitempty"`
	SleepingTicksRemaining int            `json:"sleeping_ticks_remaining"`
	SleepingBedUUID        EntityID       `json:"sleeping_bed_uuid,omitempty"`
}

// Needs are the floating-point 0..100 drives that drive NPC autonomy and
// that players accumulate incidentally (§4.H.1, §3.1).
type Needs struct {
	Hunger        float64 `json:"hunger"`
	Thirst        float64 `json:"thirst"`
	Socialization float64 `json:"socialization"`
	Sleep         float64 `json:"sleep"`

	// Extended needs (§3.1, autonomy supplement).
	Safety        float64 `json:"safety"`
	WealthDesire  float64 `json:"wealth_desire"`
	SocialStatus  float64 `json:"social_status"`
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp forces every need into [0,100] (§4.J cleanup).
func (n *Needs) Clamp() {
	n.Hunger = clamp(n.Hunger, 0, 100)
	n.Thirst = clamp(n.Thirst, 0, 100)
	n.Socialization = clamp(n.Socialization, 0, 100)
	n.Sleep = clamp(n.Sleep, 0, 100)
	n.Safety = clamp(n.Safety, 0, 100)
	n.WealthDesire = clamp(n.WealthDesire, 0, 100)
	n.SocialStatus = clamp(n.SocialStatus, 0, 100)
}

// Lowest returns the name of the most unsatisfied of the four core needs
// (hunger/thirst/socialization/sleep), used by the offline planning path
// (§4.H.3).
func (n *Needs) Lowest() string {
	lowestName, lowestVal := "hunger", n.Hunger
	for name, v := range map[string]float64{
		"thirst":        n.Thirst,
		"socialization":  n.Socialization,
		"sleep":         n.Sleep,
	} {
		if v < lowestVal {
			lowestName, lowestVal = name, v
		}
	}
	return lowestName
}

// Personality holds the four 0..100 traits (responsibility, aggression,
// confidence, curiosity) driving autonomy heuristics (§4.H.2).
type Personality struct {
	Responsibility int `json:"responsibility"`
	Aggression     int `json:"aggression"`
	Confidence     int `json:"confidence"`
	Curiosity      int `json:"curiosity"`
}

// FateAspects are the Fate-style narrative hooks carried by every sheet.
type FateAspects struct {
	HighConcept string `json:"high_concept,omitempty"`
	Trouble     string `json:"trouble,omitempty"`
	Background  string `json:"background,omitempty"`
	Focus       string `json:"focus,omitempty"`
}

// CharacterSheet is shared by player Users and NPCs (§3.1).
type CharacterSheet struct {
	DisplayName string `json:"display_name"`
	Description string `json:"description"`

	// GURPS-style attributes, 3-18, default 10.
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Intelligence int `json:"intelligence"`
	Health       int `json:"health"`

	// Derived stats.
	HP        int `json:"hp"`
	MaxHP     int `json:"max_hp"`
	Will      int `json:"will"`
	Perception int `json:"perception"`
	FP        int `json:"fp"`
	MaxFP     int `json:"max_fp"`

	Aspects FateAspects `json:"aspects"`

	// PsychosocialMatrix: 11 axes, each in [-10,10].
	PsychosocialMatrix [psychosocialAxisCount]int `json:"psychosocial_matrix"`

	Advantages    []string `json:"advantages,omitempty"`
	Disadvantages []string `json:"disadvantages,omitempty"`
	Quirks        []string `json:"quirks,omitempty"`

	// Combat fields.
	Morale          int      `json:"morale"`
	Yielded         bool     `json:"yielded"`
	IsDead          bool     `json:"is_dead"`
	EquippedWeapon  EntityID `json:"equipped_weapon,omitempty"`
	EquippedArmor   EntityID `json:"equipped_armor,omitempty"`

	Needs Needs `json:"needs"`

	Personality Personality `json:"personality"`

	Memory        []string           `json:"memory,omitempty"`
	Relationships map[EntityID]int   `json:"relationships,omitempty"`

	Planner PlannerState `json:"planner"`

	Inventory Inventory `json:"inventory"`

	// Supplement fields (faction rivalry / wealth-driven autonomy).
	Currency  int      `json:"currency"`
	FactionID EntityID `json:"faction_id,omitempty"`

	// BehaviorScript, when set, is a yaegi-compiled snippet defining an
	// OnTick(map[string]any) hook invoked once per GOAP tick, letting a
	// world-builder layer flavor narration onto an NPC without a Go rebuild.
	BehaviorScript string `json:"behavior_script,omitempty"`
}

// NewCharacterSheet builds a sheet with every field at its spec-mandated
// default (§3.1: attributes default 10, needs default 100, 8-slot empty
// inventory).
func NewCharacterSheet(displayName, description string) *CharacterSheet {
	s := &CharacterSheet{
		DisplayName:  displayName,
		Description:  description,
		Strength:     10,
		Dexterity:    10,
		Intelligence: 10,
		Health:       10,
		MaxHP:        10,
		HP:           10,
		Will:         10,
		Perception:   10,
		MaxFP:        10,
		FP:           10,
		Morale:       100,
		Needs: Needs{
			Hunger: 100, Thirst: 100, Socialization: 100, Sleep: 100,
			Safety: 100, WealthDesire: 0, SocialStatus: 50,
		},
		Personality:   Personality{Responsibility: 50, Aggression: 50, Confidence: 50, Curiosity: 50},
		Relationships: map[EntityID]int{},
	}
	return s
}

// ClampPsychosocial clamps every axis to [-10,10] (§4.J cleanup).
func (s *CharacterSheet) ClampPsychosocial() {
	for i, v := range s.PsychosocialMatrix {
		s.PsychosocialMatrix[i] = clampInt(v, -10, 10)
	}
}

// ClampAttributes clamps GURPS attributes to [3,18].
func (s *CharacterSheet) ClampAttributes() {
	s.Strength = clampInt(s.Strength, 3, 18)
	s.Dexterity = clampInt(s.Dexterity, 3, 18)
	s.Intelligence = clampInt(s.Intelligence, 3, 18)
	s.Health = clampInt(s.Health, 3, 18)
}

// CanAct reports whether a dead character may issue anything beyond the
// always-available read-only commands (§4.K, §8.1 property 10).
func (s *CharacterSheet) CanAct() bool {
	return !s.IsDead
}
