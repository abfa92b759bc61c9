package commands

import (
	"strings"
	"testing"

	"github.com/Deeves/TinyMUD/internal/game"
)

func dispatchAs(env *Env, sid game.EntityID, line string) bool {
	return Dispatch(env, sid, line)
}

func TestTradeFullRoundTripSwapsInventories(t *testing.T) {
	env := newTestEnv(t)
	aSid, aUser, aConn := joinTestPlayer(t, env, "Alice", "start")
	bSid, bUser, bConn := joinTestPlayer(t, env, "Bob", "start")

	dagger := &game.Object{ID: game.NewEntityID(), DisplayName: "Dagger"}
	aUser.Sheet.Inventory.PlaceAny(dagger)
	loaf := &game.Object{ID: game.NewEntityID(), DisplayName: "Loaf"}
	bUser.Sheet.Inventory.PlaceAny(loaf)

	if dispatchAs(env, aSid, "/trade start Bob") {
		t.Fatal("trade start should not close the connection")
	}
	drainOutput(aConn)
	if msgs := drainOutput(bConn); len(msgs) == 0 {
		t.Fatal("Bob should have been notified of the trade request")
	}

	dispatchAs(env, aSid, "/trade offer Dagger")
	drainOutput(aConn)
	drainOutput(bConn)

	dispatchAs(env, bSid, "/trade offer Loaf")
	drainOutput(aConn)
	drainOutput(bConn)

	dispatchAs(env, aSid, "/trade confirm")
	msgs := drainOutput(aConn)
	if len(msgs) == 0 || !strings.Contains(msgs[len(msgs)-1], "Waiting on the other party") {
		t.Fatalf("expected Alice to be told she's waiting, got %v", msgs)
	}

	dispatchAs(env, bSid, "/trade confirm")
	msgs = drainOutput(bConn)
	if len(msgs) == 0 || !strings.Contains(msgs[len(msgs)-1], "Trade complete") {
		t.Fatalf("expected Bob to be told the trade completed, got %v", msgs)
	}

	if aUser.Sheet.Inventory.Find(loaf.ID) < 0 {
		t.Fatal("Alice should have received the loaf")
	}
	if aUser.Sheet.Inventory.Find(dagger.ID) >= 0 {
		t.Fatal("Alice should no longer hold the dagger")
	}
	if bUser.Sheet.Inventory.Find(dagger.ID) < 0 {
		t.Fatal("Bob should have received the dagger")
	}

	if _, _, ok := findTradeLocked(env.World, aUser.UserID); ok {
		t.Fatal("the trade registry entry should have been removed after execution")
	}
}

func TestTradeCancelRemovesTradeAndNotifiesOtherParty(t *testing.T) {
	env := newTestEnv(t)
	aSid, aUser, aConn := joinTestPlayer(t, env, "Alice", "start")
	_, bUser, bConn := joinTestPlayer(t, env, "Bob", "start")

	dispatchAs(env, aSid, "/trade start Bob")
	drainOutput(aConn)
	drainOutput(bConn)

	dispatchAs(env, aSid, "/trade cancel")
	msgs := drainOutput(aConn)
	if len(msgs) == 0 || !strings.Contains(msgs[len(msgs)-1], "Trade cancelled") {
		t.Fatalf("expected cancellation confirmation, got %v", msgs)
	}
	msgs = drainOutput(bConn)
	if len(msgs) == 0 || !strings.Contains(msgs[len(msgs)-1], "cancelled the trade") {
		t.Fatalf("expected Bob to be notified of the cancellation, got %v", msgs)
	}

	if _, _, ok := findTradeLocked(env.World, aUser.UserID); ok {
		t.Fatal("cancelled trade should be removed from the registry")
	}
	_ = bUser
}

func TestCancelTradesForUserOnDisconnectNotifiesOtherParty(t *testing.T) {
	env := newTestEnv(t)
	aSid, aUser, aConn := joinTestPlayer(t, env, "Alice", "start")
	_, bUser, bConn := joinTestPlayer(t, env, "Bob", "start")

	dispatchAs(env, aSid, "/trade start Bob")
	drainOutput(aConn)
	drainOutput(bConn)

	env.World.Lock()
	leaveWorldLocked(env, aSid)
	env.World.Unlock()

	if _, _, ok := findTradeLocked(env.World, bUser.UserID); ok {
		t.Fatal("disconnecting a party should cancel the open trade")
	}
	msgs := drainOutput(bConn)
	if len(msgs) == 0 || !strings.Contains(msgs[len(msgs)-1], "the other party disconnected") {
		t.Fatalf("expected Bob to be told the trade was cancelled on disconnect, got %v", msgs)
	}
	_ = aUser
}

func TestTradeOfferRejectsUnknownItem(t *testing.T) {
	env := newTestEnv(t)
	aSid, _, aConn := joinTestPlayer(t, env, "Alice", "start")
	_, _, bConn := joinTestPlayer(t, env, "Bob", "start")

	dispatchAs(env, aSid, "/trade start Bob")
	drainOutput(aConn)
	drainOutput(bConn)

	dispatchAs(env, aSid, "/trade offer Nonexistent")
	msgs := drainOutput(aConn)
	if len(msgs) == 0 {
		t.Fatal("expected an error reply for an unresolvable item")
	}
}

func TestTradeStartWithSelfIsRejected(t *testing.T) {
	env := newTestEnv(t)
	aSid, _, aConn := joinTestPlayer(t, env, "Alice", "start")

	dispatchAs(env, aSid, "/trade start Alice")
	msgs := drainOutput(aConn)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "can't trade with yourself") {
		t.Fatalf("expected a self-trade rejection, got %v", msgs)
	}
}
