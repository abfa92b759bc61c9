package commands

import (
	"fmt"
	"strings"

	"github.com/Deeves/TinyMUD/internal/game"
)

const authPrompt = "Type `create <name> | <password> | <description>` or `login <name> | <password>`."

// handleAuthFlow routes one line from an unauthenticated session (§4.E: "a
// connection begins in an auth flow"). Both a bare verb-first form
// (`create Name | Pw | Desc`) and the slash form (`/auth create ...`) are
// accepted, since the spec only requires the pipe-delimited fields, not a
// specific leading token.
func handleAuthFlow(env *Env, sessionID game.EntityID, line string) bool {
	rest := line
	if strings.HasPrefix(strings.ToLower(rest), "/auth") {
		rest = strings.TrimSpace(rest[len("/auth"):])
	}
	verb, arg := splitVerb(rest)
	verb = strings.ToLower(verb)

	switch verb {
	case "create":
		fields := splitPipe(arg)
		if len(fields) != 3 {
			env.World.Lock()
			env.World.Emit(sessionID, errorLine("usage: create <name> | <password> | <description>"))
			env.World.Unlock()
			return false
		}
		return authCreate(env, sessionID, fields[0], fields[1], fields[2])

	case "login":
		fields := splitPipe(arg)
		if len(fields) != 2 {
			env.World.Lock()
			env.World.Emit(sessionID, errorLine("usage: login <name> | <password>"))
			env.World.Unlock()
			return false
		}
		return authLogin(env, sessionID, fields[0], fields[1])

	default:
		env.World.Lock()
		env.World.Emit(sessionID, systemLine(authPrompt))
		env.World.Unlock()
		return false
	}
}

func authCreate(env *Env, sessionID game.EntityID, name, password, description string) bool {
	env.World.Lock()

	if !env.Limiter.Allow(sessionID, "auth", env.Now()) {
		env.World.Emit(sessionID, errorLine("too many attempts; wait a moment and try again."))
		env.World.Unlock()
		return false
	}

	user, err := game.CreateUser(env.World, name, password, description)
	if err != nil {
		env.World.Emit(sessionID, errorLine(err.Error()))
		env.World.Unlock()
		return false
	}
	bindSession(env, sessionID, user)
	env.World.Unlock()

	// flush immediately so a crash right after signup never loses the new account.
	if err := env.Persist.SaveNow(env.World); err != nil {
		env.World.Lock()
		env.World.Emit(sessionID, errorLine(err.Error()))
		env.World.Unlock()
	}
	return false
}

func authLogin(env *Env, sessionID game.EntityID, name, password string) bool {
	env.World.Lock()
	defer env.World.Unlock()

	if !env.Limiter.Allow(sessionID, "auth", env.Now()) {
		env.World.Emit(sessionID, errorLine("too many attempts; wait a moment and try again."))
		return false
	}

	user, err := game.AuthenticateUser(env.World, name, password)
	if err != nil {
		env.World.Emit(sessionID, errorLine(err.Error()))
		return false
	}
	if oldSessionID, ok := env.World.ActiveSessionForUser(user.UserID); ok {
		env.World.Emit(oldSessionID, systemLine("Your connection has been claimed from another location."))
		delete(env.World.Players, oldSessionID)
	}
	bindSession(env, sessionID, user)
	return false
}

// spawnRoomID picks the room a newly bound Player starts in: the
// conventional "start" room if present, else the lexicographically first
// room, else a freshly created "start" room (an empty world must still be
// enterable).
func spawnRoomID(w *game.World) game.RoomID {
	if _, ok := w.Rooms["start"]; ok {
		return "start"
	}
	var first game.RoomID
	for id := range w.Rooms {
		if first == "" || id < first {
			first = id
		}
	}
	if first != "" {
		return first
	}
	room, err := game.CreateRoom(w, "start", "The Beginning", "A blank, waiting space.")
	if err != nil {
		return ""
	}
	return room.ID
}

func bindSession(env *Env, sessionID game.EntityID, user *game.User) {
	room := spawnRoomID(env.World)
	player := &game.Player{SessionID: sessionID, UserID: user.UserID, RoomID: room}
	env.World.Players[sessionID] = player
	if r, ok := env.World.Rooms[room]; ok {
		r.Players[string(sessionID)] = true
	}
	env.World.Emit(sessionID, systemLine(fmt.Sprintf("Welcome, %s.", user.DisplayName)))
	env.World.Emit(sessionID, describeRoomLocked(env.World, room))
}

// auth is the post-login admin-management surface: /auth promote|demote|
// list_admins (§6.4). create/login only apply pre-authentication and are
// handled by handleAuthFlow above.
var authCommand = Define(Definition{
	Name:        "auth",
	Usage:       "/auth promote <name> | /auth demote <name> | /auth list_admins",
	Description: "Manage administrator status.",
	AdminOnly:   true,
}, func(c *Context) bool {
	verb, arg := splitVerb(c.Arg)
	verb = strings.ToLower(verb)

	c.Env.World.Lock()
	defer c.Env.World.Unlock()

	switch verb {
	case "promote":
		u, err := game.SetAdmin(c.Env.World, arg, true)
		if err != nil {
			c.ReplyError(err)
			return false
		}
		c.Reply(systemLine(fmt.Sprintf("%s is now an administrator.", u.DisplayName)))
		c.Env.Persist.SaveDebounced(c.Env.World)
	case "demote":
		u, err := game.SetAdmin(c.Env.World, arg, false)
		if err != nil {
			c.ReplyError(err)
			return false
		}
		c.Reply(systemLine(fmt.Sprintf("%s is no longer an administrator.", u.DisplayName)))
		c.Env.Persist.SaveDebounced(c.Env.World)
	case "list_admins":
		admins := game.ListAdmins(c.Env.World)
		c.Reply(systemLine("Administrators: " + strings.Join(admins, ", ")))
	default:
		c.Reply(errorLine("usage: /auth promote <name> | /auth demote <name> | /auth list_admins"))
	}
	return false
})
