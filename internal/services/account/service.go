package account

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"authstate/internal/domain"
)

var (
	// ErrAccountNotFound is returned when the user id is not in the user state.
	ErrAccountNotFound = errors.New("account not found")

	// ErrEmptyUserID is returned when an account has no user id.
	ErrEmptyUserID = errors.New("account has no user id")
)

// Service coordinates the user state and per-user attributes.
type Service struct {
	disk domain.AuthDiskSource
	log  *zap.Logger
}

// New returns an account service backed by disk.
func New(disk domain.AuthDiskSource, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{disk: disk, log: log}
}

// AddAccount inserts or replaces an account. It becomes active if makeActive
// is set or no account is active yet.
func (s *Service) AddAccount(account domain.Account, makeActive bool) error {
	id := account.Profile.UserID
	if id == "" {
		return ErrEmptyUserID
	}
	state, err := s.disk.UserState()
	if err != nil {
		return err
	}
	if state == nil {
		state = &domain.UserState{}
	}
	if state.Accounts == nil {
		state.Accounts = make(map[domain.UserID]domain.Account)
	}
	state.Accounts[id] = account
	if makeActive || state.ActiveUserID == "" {
		state.ActiveUserID = id
	}
	if err := s.disk.SetUserState(state); err != nil {
		return err
	}
	s.log.Info("account added", zap.String("user", string(id)), zap.Bool("active", state.ActiveUserID == id))
	return nil
}

// SwitchAccount makes userID the active account.
func (s *Service) SwitchAccount(userID domain.UserID) error {
	state, err := s.disk.UserState()
	if err != nil {
		return err
	}
	if _, ok := accountOf(state, userID); !ok {
		return fmt.Errorf("switch to %s: %w", userID, ErrAccountNotFound)
	}
	if state.ActiveUserID == userID {
		return nil
	}
	state.ActiveUserID = userID
	if err := s.disk.SetUserState(state); err != nil {
		return err
	}
	s.log.Info("switched account", zap.String("user", string(userID)))
	return nil
}

// Logout clears every stored attribute of userID and removes the account.
// If it was active, the remaining account used most recently becomes active;
// with no accounts left the user state is cleared.
func (s *Service) Logout(userID domain.UserID) error {
	state, err := s.disk.UserState()
	if err != nil {
		return err
	}
	if _, ok := accountOf(state, userID); !ok {
		return fmt.Errorf("logout %s: %w", userID, ErrAccountNotFound)
	}
	if err := s.disk.ClearData(userID); err != nil {
		return err
	}

	delete(state.Accounts, userID)
	if len(state.Accounts) == 0 {
		s.log.Info("logged out last account", zap.String("user", string(userID)))
		return s.disk.SetUserState(nil)
	}
	if state.ActiveUserID == userID {
		summaries, err := s.summaries(state)
		if err != nil {
			return err
		}
		state.ActiveUserID = summaries[0].UserID
	}
	if err := s.disk.SetUserState(state); err != nil {
		return err
	}
	s.log.Info("logged out account",
		zap.String("user", string(userID)),
		zap.String("active", string(state.ActiveUserID)))
	return nil
}

// LockAccount drops the auto-unlock key of userID. The account stays in the
// user state and keeps its encrypted keys, so it can be unlocked again with
// the master password.
func (s *Service) LockAccount(userID domain.UserID) error {
	state, err := s.disk.UserState()
	if err != nil {
		return err
	}
	if _, ok := accountOf(state, userID); !ok {
		return fmt.Errorf("lock %s: %w", userID, ErrAccountNotFound)
	}
	if err := s.disk.StoreUserAutoUnlockKey(userID, nil); err != nil {
		return err
	}
	s.log.Info("locked account", zap.String("user", string(userID)))
	return nil
}

// RecordActivity stores now as the account's last activity time.
func (s *Service) RecordActivity(userID domain.UserID, now time.Time) error {
	millis := now.UnixMilli()
	return s.disk.StoreLastActiveTimeMillis(userID, &millis)
}

// Accounts lists the accounts on this device, most recently active first.
func (s *Service) Accounts() ([]domain.AccountSummary, error) {
	state, err := s.disk.UserState()
	if err != nil {
		return nil, err
	}
	return s.summaries(state)
}

func (s *Service) summaries(state *domain.UserState) ([]domain.AccountSummary, error) {
	if state == nil {
		return nil, nil
	}
	out := make([]domain.AccountSummary, 0, len(state.Accounts))
	for id, a := range state.Accounts {
		sum := domain.AccountSummary{
			UserID: id,
			Email:  a.Profile.Email,
			Name:   a.Profile.Name,
			Active: id == state.ActiveUserID,
		}
		millis, err := s.disk.LastActiveTimeMillis(id)
		if err != nil {
			return nil, err
		}
		if millis != nil {
			at := time.UnixMilli(*millis)
			sum.LastActiveAt = &at
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].LastActiveAt, out[j].LastActiveAt
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case (a == nil) != (b == nil):
			return a != nil
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func accountOf(state *domain.UserState, userID domain.UserID) (domain.Account, bool) {
	if state == nil {
		return domain.Account{}, false
	}
	a, ok := state.Accounts[userID]
	return a, ok
}

// Compile-time assertion that Service implements domain.AccountService.
var _ domain.AccountService = (*Service)(nil)
