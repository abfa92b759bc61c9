package game

import "testing"

func TestTradeProposeRequiresParty(t *testing.T) {
	a, b := NewEntityID(), NewEntityID()
	trade := NewTrade(a, b)
	if err := trade.Propose(NewEntityID(), nil); err == nil {
		t.Fatal("expected a permission error for a non-party proposer")
	}
}

func TestTradeProposeMovesToProposedAndClearsConfirmations(t *testing.T) {
	a, b := NewEntityID(), NewEntityID()
	trade := NewTrade(a, b)
	item := NewEntityID()
	if err := trade.Propose(a, []EntityID{item}); err != nil {
		t.Fatalf("Propose: %v", err)
	}
	if trade.State != TradeProposed {
		t.Fatalf("State = %v, want %v", trade.State, TradeProposed)
	}
	if err := trade.Confirm(a); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	// a new proposal from either side, even after a confirm, must reset both.
	if err := trade.Propose(b, []EntityID{NewEntityID()}); err != nil {
		t.Fatalf("Propose: %v", err)
	}
	if trade.ConfirmedA || trade.ConfirmedB {
		t.Fatal("expected both confirmations to be cleared by a new proposal")
	}
}

func TestTradeConfirmBothSidesAccepts(t *testing.T) {
	a, b := NewEntityID(), NewEntityID()
	trade := NewTrade(a, b)
	if err := trade.Confirm(a); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if trade.State == TradeAccepted {
		t.Fatal("one-sided confirmation must not accept the trade")
	}
	if err := trade.Confirm(b); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if trade.State != TradeAccepted {
		t.Fatalf("State = %v, want %v", trade.State, TradeAccepted)
	}
}

func TestTradeCancelAndReject(t *testing.T) {
	a, b := NewEntityID(), NewEntityID()
	trade := NewTrade(a, b)
	trade.Cancel()
	if trade.State != TradeCancelled {
		t.Fatalf("State = %v, want %v", trade.State, TradeCancelled)
	}
	trade.Reject()
	if trade.State != TradeRejected {
		t.Fatalf("State = %v, want %v", trade.State, TradeRejected)
	}
}

func TestExecuteRequiresAcceptedState(t *testing.T) {
	a, b := NewEntityID(), NewEntityID()
	trade := NewTrade(a, b)
	sheetA, sheetB := NewCharacterSheet("A", ""), NewCharacterSheet("B", "")
	if err := Execute(trade, sheetA, sheetB); err == nil {
		t.Fatal("expected a constraint error when the trade hasn't been accepted")
	}
}

func TestExecuteSwapsOfferedItems(t *testing.T) {
	a, b := NewEntityID(), NewEntityID()
	sheetA, sheetB := NewCharacterSheet("A", ""), NewCharacterSheet("B", "")
	coin := &Object{ID: NewEntityID(), DisplayName: "a coin"}
	gem := &Object{ID: NewEntityID(), DisplayName: "a gem"}
	sheetA.Inventory.PlaceAny(coin)
	sheetB.Inventory.PlaceAny(gem)

	trade := NewTrade(a, b)
	if err := trade.Propose(a, []EntityID{coin.ID}); err != nil {
		t.Fatalf("Propose: %v", err)
	}
	if err := trade.Propose(b, []EntityID{gem.ID}); err != nil {
		t.Fatalf("Propose: %v", err)
	}
	if err := trade.Confirm(a); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if err := trade.Confirm(b); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if err := Execute(trade, sheetA, sheetB); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if sheetA.Inventory.Find(gem.ID) < 0 {
		t.Fatal("expected A to now hold the gem")
	}
	if sheetB.Inventory.Find(coin.ID) < 0 {
		t.Fatal("expected B to now hold the coin")
	}
	if sheetA.Inventory.Find(coin.ID) >= 0 {
		t.Fatal("expected A to no longer hold the coin")
	}
}

func TestExecuteAbortsAtomicallyWhenReceivingInventoryIsFull(t *testing.T) {
	a, b := NewEntityID(), NewEntityID()
	sheetA, sheetB := NewCharacterSheet("A", ""), NewCharacterSheet("B", "")
	// fill every slot of A's inventory with large items so it can't receive anything.
	for i := 0; i < 8; i++ {
		sheetA.Inventory.Slots[i] = &Object{ID: NewEntityID(), DisplayName: "junk", Tags: []string{TagLarge}}
	}
	gift := &Object{ID: NewEntityID(), DisplayName: "a gift"}
	sheetB.Inventory.PlaceAny(gift)

	trade := NewTrade(a, b)
	if err := trade.Propose(b, []EntityID{gift.ID}); err != nil {
		t.Fatalf("Propose: %v", err)
	}
	if err := trade.Confirm(a); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if err := trade.Confirm(b); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if err := Execute(trade, sheetA, sheetB); err == nil {
		t.Fatal("expected Execute to fail when the receiving inventory has no room")
	}
	if sheetB.Inventory.Find(gift.ID) < 0 {
		t.Fatal("expected the gift to remain with B after an aborted trade")
	}
}
