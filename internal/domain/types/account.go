package types

// UserState is the device-wide session record: which account is active and
// the set of accounts logged in on this device.
type UserState struct {
	ActiveUserID UserID             `json:"activeUserId"`
	Accounts     map[UserID]Account `json:"accounts"`
}

// Account is one logged-in account.
type Account struct {
	Profile  Profile         `json:"profile"`
	Tokens   Tokens          `json:"tokens"`
	Settings AccountSettings `json:"settings"`
}

// Profile holds identity metadata returned at login.
type Profile struct {
	UserID        UserID  `json:"userId"`
	Email         string  `json:"email"`
	Name          string  `json:"name,omitempty"`
	EmailVerified bool    `json:"emailVerified"`
	HasPremium    bool    `json:"hasPremium"`
	KdfType       KdfType `json:"kdfType"`
	KdfIterations int     `json:"kdfIterations"`
	Stamp         string  `json:"stamp,omitempty"`
}

// Tokens are the bearer credentials for an account. They are opaque here.
type Tokens struct {
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// AccountSettings holds per-account preferences carried in the user state.
type AccountSettings struct {
	EnvironmentURL string `json:"environmentUrl,omitempty"`
}

// KdfType selects the key derivation function used for the master key.
type KdfType int

const (
	KdfPBKDF2SHA256 KdfType = iota
	KdfArgon2id
)

// Clone returns a deep copy so callers can mutate without touching the
// stored record.
func (s *UserState) Clone() *UserState {
	if s == nil {
		return nil
	}
	out := &UserState{ActiveUserID: s.ActiveUserID}
	if s.Accounts != nil {
		out.Accounts = make(map[UserID]Account, len(s.Accounts))
		for id, a := range s.Accounts {
			out.Accounts[id] = a
		}
	}
	return out
}
