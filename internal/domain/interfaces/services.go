package interfaces

import (
	"time"

	domaintypes "authstate/internal/domain/types"
)

// AccountSummary is a read model of one account on the device.
type AccountSummary struct {
	UserID       domaintypes.UserID
	Email        string
	Name         string
	Active       bool
	LastActiveAt *time.Time
}

// AccountService manages login, switching and logout across accounts.
type AccountService interface {
	AddAccount(account domaintypes.Account, makeActive bool) error
	SwitchAccount(userID domaintypes.UserID) error
	Logout(userID domaintypes.UserID) error
	LockAccount(userID domaintypes.UserID) error
	RecordActivity(userID domaintypes.UserID, now time.Time) error
	Accounts() ([]AccountSummary, error)
}
