package annotate

import "github.com/google/uuid"

// Context identifies who is editing. It is passed explicitly into every
// operation that attributes content, so tests can simulate multiple
// users without shared globals.
type Context struct {
	UserID    string
	UserName  string
	SessionID string
}

// NewContext creates an attribution context with a fresh session id.
func NewContext(userID, userName string) Context {
	return Context{
		UserID:    userID,
		UserName:  userName,
		SessionID: uuid.NewString(),
	}
}

// NewSession returns a copy of c with a fresh session id. Annotations
// created under the old session are no longer mergeable.
func (c Context) NewSession() Context {
	c.SessionID = uuid.NewString()
	return c
}

// IsZero reports whether the context carries no identity.
func (c Context) IsZero() bool {
	return c.UserID == "" && c.SessionID == ""
}
