package game

import "github.com/samber/oops"

// Error kinds (§7). Each service returns errors built by the constructors
// below rather than bare fmt.Errorf, so the error taxonomy is inspectable
// (ErrorKind) and every error carries the oops stack/context the pack's
// other services (holomush) attach at the raise site.
type ErrorKind string

const (
	KindValidation  ErrorKind = "VALIDATION"
	KindNotFound    ErrorKind = "NOT_FOUND"
	KindPermission  ErrorKind = "PERMISSION"
	KindConstraint  ErrorKind = "CONSTRAINT"
	KindRateLimit   ErrorKind = "RATE_LIMIT"
	KindAdapter     ErrorKind = "ADAPTER"
	KindIntegrity   ErrorKind = "INTEGRITY"
	KindPersistence ErrorKind = "PERSISTENCE"
)

func newKindError(kind ErrorKind, message string) error {
	return oops.Code(string(kind)).Errorf("%s", message)
}

func wrapKindError(kind ErrorKind, operation string, err error) error {
	return oops.Code(string(kind)).With("operation", operation).Wrap(err)
}

func newValidationError(message string) error { return newKindError(KindValidation, message) }
func newNotFoundError(message string) error    { return newKindError(KindNotFound, message) }
func newPermissionError(message string) error  { return newKindError(KindPermission, message) }
func newConstraintError(message string) error  { return newKindError(KindConstraint, message) }
func newRateLimitError(message string) error   { return newKindError(KindRateLimit, message) }
func newAdapterError(message string) error     { return newKindError(KindAdapter, message) }
func newIntegrityError(message string) error   { return newKindError(KindIntegrity, message) }
func newPersistenceError(message string) error { return newKindError(KindPersistence, message) }

// KindOf extracts the ErrorKind tagged onto err by the constructors above,
// or "" if err was not built by them.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := oopsErr.Code().(string)
	return ErrorKind(code)
}
