package game

import (
	"fmt"
	"strings"
	"sync"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// ScriptEngine compiles and caches NPC behavior scripts (teacher's
// npc_scripts.go scriptEngine, narrowed from room/area/item script contexts
// down to a single NPC OnTick hook since GOAP already owns action
// selection; the script surface is purely narrative flavor).
type ScriptEngine struct {
	mu      sync.RWMutex
	scripts map[string]*npcScriptHook
	errs    map[string]error
}

type npcScriptHook struct {
	onTick func(map[string]any)
}

func NewScriptEngine() *ScriptEngine {
	return &ScriptEngine{
		scripts: make(map[string]*npcScriptHook),
		errs:    make(map[string]error),
	}
}

// RunNPCBehavior invokes npcName's compiled OnTick hook, if sheet declares
// one, and returns any say/emote lines it produced. A script that fails to
// compile or panics at runtime degrades to no lines rather than breaking
// the tick.
func (e *ScriptEngine) RunNPCBehavior(npcName string, sheet *CharacterSheet) []string {
	if e == nil || sheet == nil || strings.TrimSpace(sheet.BehaviorScript) == "" {
		return nil
	}
	hook, err := e.hookFor(sheet.BehaviorScript)
	if err != nil || hook == nil || hook.onTick == nil {
		return nil
	}

	var lines []string
	func() {
		defer func() {
			if r := recover(); r != nil {
				lines = nil
			}
		}()
		payload := map[string]any{
			"npc": npcName,
			"say": func(text string) {
				if text = strings.TrimSpace(text); text != "" {
					lines = append(lines, npcName+` says, "`+text+`"`)
				}
			},
			"emote": func(action string) {
				if action = strings.TrimSpace(action); action != "" {
					lines = append(lines, npcName+" "+action)
				}
			},
		}
		hook.onTick(payload)
	}()
	return lines
}

func (e *ScriptEngine) hookFor(source string) (*npcScriptHook, error) {
	source = strings.TrimSpace(source)

	e.mu.RLock()
	hook, ok := e.scripts[source]
	err := e.errs[source]
	e.mu.RUnlock()
	if ok {
		return hook, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if hook, ok := e.scripts[source]; ok {
		return hook, e.errs[source]
	}
	hook, err = e.compile(source)
	e.scripts[source] = hook
	e.errs[source] = err
	return hook, err
}

func (e *ScriptEngine) compile(source string) (*npcScriptHook, error) {
	interpreter := interp.New(interp.Options{})
	if err := interpreter.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("stdlib: %w", err)
	}
	if _, err := interpreter.Eval(source); err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	value, err := interpreter.Eval("OnTick")
	if err != nil {
		if isUndefinedSymbol(err) {
			return &npcScriptHook{}, nil
		}
		return nil, fmt.Errorf("OnTick: %w", err)
	}
	fn, ok := value.Interface().(func(map[string]any))
	if !ok {
		return nil, fmt.Errorf("OnTick has unexpected type %T", value.Interface())
	}
	return &npcScriptHook{onTick: fn}, nil
}

func isUndefinedSymbol(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "undefined") || strings.Contains(msg, "not declared")
}
