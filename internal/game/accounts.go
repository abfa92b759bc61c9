package game

import (
	"sort"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// CreateUser registers a new account (§3.1, §6.4 /auth create). The first
// user ever created is auto-promoted to admin. Returns a ValidationError on
// a blank name/password and a ConstraintError if the name is already taken.
func CreateUser(w *World, displayName, password, description string) (*User, error) {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return nil, newValidationError("a name is required.")
	}
	if password == "" {
		return nil, newValidationError("a password is required.")
	}
	if _, ok := w.UserByName(name); ok {
		return nil, newConstraintError("that name is already taken.")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, wrapKindError(KindIntegrity, "hash password", err)
	}
	u := &User{
		UserID:           NewEntityID(),
		DisplayName:      name,
		PasswordVerifier: string(hashed),
		IsAdmin:          w.FirstUserIsAdmin(),
		Sheet:            NewCharacterSheet(name, description),
	}
	w.Users[u.UserID] = u
	w.usernameIndex[normalizeUsername(name)] = u.UserID
	return u, nil
}

// AuthenticateUser verifies a login (§6.4 /auth login).
func AuthenticateUser(w *World, displayName, password string) (*User, error) {
	u, ok := w.UserByName(displayName)
	if !ok {
		return nil, newNotFoundError("no such account.")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordVerifier), []byte(password)) != nil {
		return nil, newPermissionError("incorrect password.")
	}
	return u, nil
}

// SetAdmin promotes or demotes a user by display name (§6.4 /auth promote,
// /auth demote). Only an existing admin may call this at the command layer;
// this function itself just performs the mutation.
func SetAdmin(w *World, displayName string, admin bool) (*User, error) {
	u, ok := w.UserByName(displayName)
	if !ok {
		return nil, newNotFoundError("no such account.")
	}
	u.IsAdmin = admin
	return u, nil
}

// ListAdmins returns the display names of every admin user, sorted.
func ListAdmins(w *World) []string {
	var out []string
	for _, u := range w.Users {
		if u.IsAdmin {
			out = append(out, u.DisplayName)
		}
	}
	sort.Strings(out)
	return out
}
