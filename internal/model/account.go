package model

// Account is the credential record stored next to a model under the same id.
type Account struct {
	ID  string `json:"_id"`
	Rev string `json:"-"`

	Login string `json:"login"`
	// Password is the clear-text value from the registration system; only
	// PasswordHash is persisted.
	Password     string `json:"-"`
	PasswordHash string `json:"passwordHash,omitempty"`
}

// AccountBase lets embedding game accounts satisfy Credentials.
func (a *Account) AccountBase() *Account { return a }

// HasCredentials reports whether the account can be provisioned at all.
func (a *Account) HasCredentials() bool {
	return a.Login != "" && (a.Password != "" || a.PasswordHash != "")
}

// Credentials is a game-specific account document.
type Credentials interface {
	AccountBase() *Account
}
