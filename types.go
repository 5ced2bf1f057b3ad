package goCookieAuth

import "context"

// AccountStatus represents the lifecycle state of a user account. Only an
// active account may authenticate or refresh.
type AccountStatus uint8

const (
	// AccountActive is an exported constant or variable used by the authentication engine.
	AccountActive AccountStatus = iota
	// AccountDisabled is an exported constant or variable used by the authentication engine.
	AccountDisabled
	// AccountLocked is an exported constant or variable used by the authentication engine.
	AccountLocked
	// AccountDeleted is an exported constant or variable used by the authentication engine.
	AccountDeleted
)

// UserRecord is the account record returned by [UserProvider]. The Engine
// only reads it: user persistence is an external collaborator.
type UserRecord struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Status       AccountStatus
}

// UserProvider is the interface callers must implement to integrate the
// engine with their user database. Lookup failures for unknown users should
// return an error; the engine collapses them into a generic credentials
// failure before anything reaches the client.
type UserProvider interface {
	GetUserByEmail(ctx context.Context, email string) (UserRecord, error)
	GetUserByID(ctx context.Context, id int64) (UserRecord, error)
}

// Principal is the per-request authenticated identity. It is constructed
// fresh on every request by [Engine.Authenticate] and never persisted.
type Principal struct {
	UserID    int64
	Email     string
	SessionID string
}

// TokenPair holds a freshly minted access/refresh pair. Raw token values
// travel only through cookies; they must never be placed in a response body.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult is returned by [Engine.Login]. RedirectURI is the validated
// post-login navigation target, empty when none was requested.
type LoginResult struct {
	UserID      int64
	Email       string
	Name        string
	RedirectURI string
	Tokens      TokenPair
}

func accountStatusToError(status AccountStatus) error {
	switch status {
	case AccountActive:
		return nil
	case AccountDisabled:
		return ErrAccountDisabled
	case AccountLocked:
		return ErrAccountLocked
	case AccountDeleted:
		return ErrAccountDeleted
	default:
		return ErrAccountDisabled
	}
}
