package game

// TradeState is the confirmation state machine stage of a barter (§4.F
// Trade/barter service).
type TradeState string

const (
	TradeInitiated TradeState = "initiated"
	TradeProposed  TradeState = "proposed"
	TradeAccepted  TradeState = "accepted"
	TradeRejected  TradeState = "rejected"
	TradeCancelled TradeState = "cancelled"
)

// Trade is an in-flight two-party exchange. Offers name the object UUIDs
// each side is putting up; both sides must confirm the exact same offer set
// before the atomic swap executes.
type Trade struct {
	ID         EntityID
	State      TradeState
	PartyA     EntityID
	PartyB     EntityID
	OfferA     []EntityID
	OfferB     []EntityID
	ConfirmedA bool
	ConfirmedB bool
}

// NewTrade opens a trade between two users (§4.F Trade/barter service).
func NewTrade(partyA, partyB EntityID) *Trade {
	return &Trade{ID: NewEntityID(), State: TradeInitiated, PartyA: partyA, PartyB: partyB}
}

// Propose sets one side's offer and moves the trade to "proposed", clearing
// any prior confirmations since the terms changed.
func (t *Trade) Propose(party EntityID, offer []EntityID) error {
	switch party {
	case t.PartyA:
		t.OfferA = offer
		t.ConfirmedA = false
	case t.PartyB:
		t.OfferB = offer
		t.ConfirmedB = false
	default:
		return newPermissionError("you aren't party to this trade.")
	}
	t.State = TradeProposed
	t.ConfirmedA, t.ConfirmedB = false, false
	return nil
}

// Confirm records one side's agreement to the current exact offer set.
func (t *Trade) Confirm(party EntityID) error {
	switch party {
	case t.PartyA:
		t.ConfirmedA = true
	case t.PartyB:
		t.ConfirmedB = true
	default:
		return newPermissionError("you aren't party to this trade.")
	}
	if t.ConfirmedA && t.ConfirmedB {
		t.State = TradeAccepted
	}
	return nil
}

// Cancel aborts the trade unconditionally (client disconnect, explicit
// cancel, or rejection), §5 ordering guarantee: cancellation tears down the
// in-flight state machine without touching either inventory.
func (t *Trade) Cancel() {
	t.State = TradeCancelled
}

func (t *Trade) Reject() {
	t.State = TradeRejected
}

// Execute performs the atomic swap once both sides have confirmed. Any
// inventory-full failure aborts the whole trade with no partial transfer —
// items are only ever removed from the losing inventory after both target
// inventories are confirmed to have room.
func Execute(t *Trade, sheetA, sheetB *CharacterSheet) error {
	if t.State != TradeAccepted {
		return newConstraintError("this trade hasn't been accepted by both parties.")
	}

	objsA := make([]*Object, 0, len(t.OfferA))
	for _, id := range t.OfferA {
		o := sheetA.Inventory.Find(id)
		if o < 0 {
			return newConstraintError("an offered item is no longer available.")
		}
		objsA = append(objsA, sheetA.Inventory.Slots[o])
	}
	objsB := make([]*Object, 0, len(t.OfferB))
	for _, id := range t.OfferB {
		o := sheetB.Inventory.Find(id)
		if o < 0 {
			return newConstraintError("an offered item is no longer available.")
		}
		objsB = append(objsB, sheetB.Inventory.Slots[o])
	}

	simA, simB := cloneInventoryWithout(sheetA.Inventory, t.OfferA), cloneInventoryWithout(sheetB.Inventory, t.OfferB)
	for _, o := range objsB {
		if simA.PlaceAny(o) < 0 {
			return newConstraintError("your inventory can't hold what you'd receive.")
		}
	}
	for _, o := range objsA {
		if simB.PlaceAny(o) < 0 {
			return newConstraintError("their inventory can't hold what they'd receive.")
		}
	}

	for _, id := range t.OfferA {
		sheetA.Inventory.Remove(id)
	}
	for _, id := range t.OfferB {
		sheetB.Inventory.Remove(id)
	}
	for _, o := range objsB {
		sheetA.Inventory.PlaceAny(o)
	}
	for _, o := range objsA {
		sheetB.Inventory.PlaceAny(o)
	}
	return nil
}

func cloneInventoryWithout(inv Inventory, excluded []EntityID) *Inventory {
	skip := map[EntityID]bool{}
	for _, id := range excluded {
		skip[id] = true
	}
	out := &Inventory{}
	for i, o := range inv.Slots {
		if o == nil || skip[o.ID] {
			continue
		}
		out.Slots[i] = o
	}
	return out
}
