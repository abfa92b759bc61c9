package commands

import "github.com/Deeves/TinyMUD/internal/game"

// NewDisconnectHandler returns a game.DisconnectHandler that cleans up after
// a connection drops without an explicit /quit (client hangup, network
// error, or a kick that has already unblocked the read loop). It is a
// no-op if the session was never authenticated or was already torn down.
func NewDisconnectHandler(env *Env) game.DisconnectHandler {
	return func(sessionID game.EntityID) {
		env.World.Lock()
		if _, ok := env.World.Players[sessionID]; !ok {
			env.World.Unlock()
			return
		}
		leaveWorldLocked(env, sessionID)
		env.World.Unlock()

		// logout is a critical moment: flush immediately rather than letting
		// the last-seen state wait behind the debounce interval.
		if err := env.Persist.SaveNow(env.World); err != nil {
			env.Log.Error("save on disconnect failed", "error", err)
		}
	}
}
