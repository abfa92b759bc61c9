package game

// Broadcast is one payload destined for every live session in a room other
// than the acting player.
type Broadcast struct {
	RoomID  RoomID
	Payload string
}

// ServiceResult is the uniform return contract every world-mutating service
// call produces (§4.D). It generalizes the four-way (handled, error, emits,
// broadcasts) tuple its Python ancestor used into a single Go value: Handled
// tells the dispatcher whether this service recognized the request at all,
// Err carries a taxonomy'd error (see errors.go) when the request was
// recognized but failed, Emits are private feedback lines for the acting
// player, and Broadcasts are public announcements to room occupants.
type ServiceResult struct {
	Handled    bool
	Err        error
	Emits      []string
	Broadcasts []Broadcast
}

// Success builds a ServiceResult with no error.
func Success(emits ...string) ServiceResult {
	return ServiceResult{Handled: true, Emits: emits}
}

// SuccessWithBroadcast builds a ServiceResult carrying both private and
// public feedback.
func SuccessWithBroadcast(broadcasts []Broadcast, emits ...string) ServiceResult {
	return ServiceResult{Handled: true, Emits: emits, Broadcasts: broadcasts}
}

// Failure builds a ServiceResult for a recognized-but-failed request. err is
// still recorded so callers can branch on its ErrorKind.
func Failure(err error) ServiceResult {
	return ServiceResult{Handled: true, Err: err}
}

// NotHandled builds a ServiceResult signaling this service did not recognize
// the request, letting a dispatcher chain try the next service.
func NotHandled() ServiceResult {
	return ServiceResult{}
}

// OK reports whether the result represents success (handled, no error).
func (r ServiceResult) OK() bool {
	return r.Handled && r.Err == nil
}
