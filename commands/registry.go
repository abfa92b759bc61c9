// Package commands implements the §4.E dispatcher: an ordered table of
// slash-commands (plus bare look/l) routed against the internal/game
// services, adapted from the teacher's registry.go Define/Dispatch pattern
// onto the session/world model rebuilt for this domain.
package commands

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Deeves/TinyMUD/internal/game"
)

// Definition describes a single command's metadata.
type Definition struct {
	Name        string
	Aliases     []string
	Usage       string
	Description string
	AdminOnly   bool
}

// Handler executes a command. Returning true indicates the connection
// should terminate.
type Handler func(*Context) bool

// Command couples metadata with the executable handler.
type Command struct {
	Definition
	Handler Handler
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Command)
	ordered    []*Command
)

// Define registers a new command. Panics on incomplete metadata or a
// duplicate name/alias, exactly as the teacher's registry does.
func Define(def Definition, handler Handler) *Command {
	if handler == nil {
		panic("commands: handler must not be nil")
	}
	if strings.TrimSpace(def.Name) == "" {
		panic("commands: command must have a name")
	}

	cmd := &Command{Definition: def, Handler: handler}

	registryMu.Lock()
	defer registryMu.Unlock()

	registerName := func(name string) {
		key := strings.ToLower(name)
		if _, exists := registry[key]; exists {
			panic(fmt.Sprintf("commands: duplicate registration for %q", name))
		}
		registry[key] = cmd
	}

	registerName(def.Name)
	for _, alias := range def.Aliases {
		if strings.TrimSpace(alias) == "" {
			continue
		}
		registerName(alias)
	}

	ordered = append(ordered, cmd)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })

	return cmd
}

// All returns the registered commands sorted by primary name.
func All() []*Command {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]*Command, len(ordered))
	copy(out, ordered)
	return out
}

func lookup(name string) (*Command, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	cmd, ok := registry[strings.ToLower(name)]
	return cmd, ok
}

// Dispatch parses one line of input from sessionID. A session with no
// bound Player yet is routed to the auth flow instead of the command table
// (§4.E: "a connection begins in an auth flow"). Returns true when the
// connection should close.
func Dispatch(env *Env, sessionID game.EntityID, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if env.MaxMessageLen > 0 && len(line) > env.MaxMessageLen {
		env.World.Lock()
		env.World.Emit(sessionID, errorLine("message too long."))
		env.World.Unlock()
		return false
	}

	env.World.Lock()
	_, authenticated := env.World.Players[sessionID]
	env.World.Unlock()

	if !authenticated {
		return handleAuthFlow(env, sessionID, line)
	}

	if !env.Limiter.Allow(sessionID, "command", env.Now()) {
		env.World.Lock()
		env.World.Emit(sessionID, errorLine("you are sending commands too quickly."))
		env.World.Unlock()
		return false
	}

	verb, arg := splitVerb(line)
	verb = strings.TrimPrefix(strings.ToLower(verb), "/")
	cmd, ok := lookup(verb)
	if !ok {
		env.World.Lock()
		env.World.Emit(sessionID, errorLine("unknown command. Type '/help'."))
		env.World.Unlock()
		return false
	}

	ctx := &Context{Env: env, SessionID: sessionID, Raw: line, Arg: arg, Verb: verb, Command: cmd}

	if cmd.AdminOnly {
		env.World.RLock()
		admin := ctx.isAdminLocked()
		env.World.RUnlock()
		if !admin {
			env.World.Lock()
			env.World.Emit(sessionID, errorLine("you are not permitted to do that."))
			env.World.Unlock()
			return false
		}
	}

	return cmd.Handler(ctx)
}

// splitVerb divides line into its leading verb token and the remainder.
func splitVerb(line string) (verb, rest string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", ""
	}
	verb = fields[0]
	rest = strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
	return verb, rest
}

// splitPipe splits a pipe-delimited argument list, trimming each field, as
// used by every multi-argument slash-command (§6.4).
func splitPipe(s string) []string {
	parts := strings.Split(s, "|")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

func errorLine(msg string) string  { return "[color=red]" + msg + "[/color]" }
func systemLine(msg string) string { return "[color=cyan]" + msg + "[/color]" }
