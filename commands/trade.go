package commands

import (
	"strings"
	"sync"

	"github.com/Deeves/TinyMUD/internal/game"
)

// Trades are ephemeral confirmation state machines that must not survive a
// disconnect (§5 cancellation), so they live outside the persisted World in
// a small in-memory registry keyed by the unordered pair of user ids.
var (
	tradesMu sync.Mutex
	trades   = map[string]*game.Trade{}
)

func tradeKey(a, b game.EntityID) string {
	if a > b {
		a, b = b, a
	}
	return string(a) + "\x00" + string(b)
}

const tradeUsage = "/trade start <name>  /trade offer <item1,item2,...>  " +
	"/trade confirm  /trade cancel"

var _ = Define(Definition{
	Name:        "trade",
	Usage:       tradeUsage,
	Description: "Barter items with another player.",
}, func(c *Context) bool {
	verb, arg := splitVerb(c.Arg)
	verb = strings.ToLower(verb)

	c.Env.World.Lock()
	defer c.Env.World.Unlock()

	self, ok := c.UserLocked()
	if !ok {
		return false
	}

	switch verb {
	case "start":
		other, ok := c.Env.World.UserByName(strings.TrimSpace(arg))
		if !ok {
			c.Reply(errorLine("no such user."))
			return false
		}
		if other.UserID == self.UserID {
			c.Reply(errorLine("you can't trade with yourself."))
			return false
		}
		tradesMu.Lock()
		key := tradeKey(self.UserID, other.UserID)
		trades[key] = game.NewTrade(self.UserID, other.UserID)
		tradesMu.Unlock()
		c.Reply(systemLine("Trade started with " + other.DisplayName + "."))
		if sid, ok := c.Env.World.ActiveSessionForUser(other.UserID); ok {
			c.Env.World.Emit(sid, systemLine(self.DisplayName+" wants to trade. Use /trade offer to respond."))
		}

	case "offer":
		trade, other, ok := findTradeLocked(c.Env.World, self.UserID)
		if !ok {
			c.Reply(errorLine("you have no open trade."))
			return false
		}
		if self.Sheet == nil {
			return false
		}
		var offered []game.EntityID
		for _, name := range strings.Split(arg, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			id, err := resolveInventoryObject(self.Sheet, name)
			if err != nil {
				c.ReplyError(err)
				return false
			}
			offered = append(offered, id)
		}
		if err := trade.Propose(self.UserID, offered); err != nil {
			c.ReplyError(err)
			return false
		}
		c.Reply(systemLine("Offer recorded."))
		if sid, ok := c.Env.World.ActiveSessionForUser(other.UserID); ok {
			c.Env.World.Emit(sid, systemLine(self.DisplayName+" updated their trade offer. Use /trade confirm to accept."))
		}

	case "confirm":
		trade, other, ok := findTradeLocked(c.Env.World, self.UserID)
		if !ok {
			c.Reply(errorLine("you have no open trade."))
			return false
		}
		if err := trade.Confirm(self.UserID); err != nil {
			c.ReplyError(err)
			return false
		}
		if trade.State != game.TradeAccepted {
			c.Reply(systemLine("Confirmed. Waiting on the other party."))
			return false
		}
		if other.Sheet == nil || self.Sheet == nil {
			return false
		}
		sheetA, sheetB := self.Sheet, other.Sheet
		if trade.PartyA != self.UserID {
			sheetA, sheetB = other.Sheet, self.Sheet
		}
		if err := game.Execute(trade, sheetA, sheetB); err != nil {
			c.ReplyError(err)
			return false
		}
		tradesMu.Lock()
		delete(trades, tradeKey(self.UserID, other.UserID))
		tradesMu.Unlock()
		c.Reply(systemLine("Trade complete."))
		if sid, ok := c.Env.World.ActiveSessionForUser(other.UserID); ok {
			c.Env.World.Emit(sid, systemLine("Trade complete."))
		}
		c.Env.Persist.SaveDebounced(c.Env.World)

	case "cancel":
		trade, other, ok := findTradeLocked(c.Env.World, self.UserID)
		if !ok {
			c.Reply(errorLine("you have no open trade."))
			return false
		}
		trade.Cancel()
		tradesMu.Lock()
		delete(trades, tradeKey(self.UserID, other.UserID))
		tradesMu.Unlock()
		c.Reply(systemLine("Trade cancelled."))
		if sid, ok := c.Env.World.ActiveSessionForUser(other.UserID); ok {
			c.Env.World.Emit(sid, systemLine(self.DisplayName+" cancelled the trade."))
		}

	default:
		c.Reply(errorLine("usage: " + tradeUsage))
	}
	return false
})

// CancelTradesForUser cancels any open trade involving userID, notifying
// the other party if they are connected. Callers must hold Env.World.Lock().
func CancelTradesForUser(w *game.World, userID game.EntityID) {
	tradesMu.Lock()
	defer tradesMu.Unlock()
	for key, t := range trades {
		if t.PartyA != userID && t.PartyB != userID {
			continue
		}
		other := t.PartyA
		if other == userID {
			other = t.PartyB
		}
		if sid, ok := w.ActiveSessionForUser(other); ok {
			w.Emit(sid, systemLine("Trade cancelled: the other party disconnected."))
		}
		delete(trades, key)
	}
}

// findTradeLocked finds the open trade involving selfID, returning the
// other party's User. Callers must hold Env.World's lock.
func findTradeLocked(w *game.World, selfID game.EntityID) (*game.Trade, *game.User, bool) {
	tradesMu.Lock()
	defer tradesMu.Unlock()
	for key, t := range trades {
		if t.PartyA != selfID && t.PartyB != selfID {
			continue
		}
		otherID := t.PartyA
		if otherID == selfID {
			otherID = t.PartyB
		}
		other, ok := w.Users[otherID]
		if !ok {
			delete(trades, key)
			return nil, nil, false
		}
		return t, other, true
	}
	return nil, nil, false
}
