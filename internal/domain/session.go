package domain

// Session identifies the authenticated caller of a ledger or analytics
// operation. It is passed explicitly into every call; there is no ambient
// "current user" state anywhere in the engine.
type Session struct {
	UserID  int64
	IsAdmin bool
}

// NewSession builds a Session for a verified user.
func NewSession(u *User) Session {
	return Session{UserID: u.ID, IsAdmin: u.IsAdmin}
}
