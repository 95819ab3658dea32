package interfaces

import (
	"context"

	domaintypes "authstate/internal/domain/types"
)

// Subscription delivers values from a replaying change stream.
type Subscription[T any] interface {
	C() <-chan T
	Cancel()
}

// AuthDiskSource is the multi-user authentication state store.
type AuthDiskSource interface {
	UniqueAppID() (string, error)

	RememberedEmail() (*string, error)
	StoreRememberedEmail(email *string) error

	UserState() (*domaintypes.UserState, error)
	SetUserState(state *domaintypes.UserState) error
	UserStateFlow(ctx context.Context) (Subscription[*domaintypes.UserState], error)

	ClearData(userID domaintypes.UserID) error

	LastActiveTimeMillis(userID domaintypes.UserID) (*int64, error)
	StoreLastActiveTimeMillis(userID domaintypes.UserID, millis *int64) error

	UserKey(userID domaintypes.UserID) (*string, error)
	StoreUserKey(userID domaintypes.UserID, key *string) error

	PrivateKey(userID domaintypes.UserID) (*string, error)
	StorePrivateKey(userID domaintypes.UserID, key *string) error

	UserAutoUnlockKey(userID domaintypes.UserID) (*string, error)
	StoreUserAutoUnlockKey(userID domaintypes.UserID, key *string) error

	OrganizationKeys(userID domaintypes.UserID) (map[string]string, error)
	StoreOrganizationKeys(userID domaintypes.UserID, keys map[string]string) error

	Organizations(userID domaintypes.UserID) ([]domaintypes.Organization, error)
	StoreOrganizations(userID domaintypes.UserID, orgs []domaintypes.Organization) error
	OrganizationsFlow(
		ctx context.Context,
		userID domaintypes.UserID,
	) (Subscription[[]domaintypes.Organization], error)
}
