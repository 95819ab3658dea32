package authdisk

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"authstate/internal/broadcast"
	"authstate/internal/domain"
)

// Option configures a Source.
type Option func(*Source)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(s *Source) {
		if log != nil {
			s.log = log
		}
	}
}

// WithKeyPrefix namespaces backing keys. The default is DefaultKeyPrefix.
func WithKeyPrefix(prefix string) Option {
	return func(s *Source) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithSubscriberBuffer sets the per-subscriber queue length of every flow.
func WithSubscriberBuffer(n int) Option {
	return func(s *Source) { s.buffer = n }
}

// Source is the authentication state store. It is safe for concurrent use;
// all reads and writes are serialized.
type Source struct {
	raw    domain.RawStore
	log    *zap.Logger
	prefix string
	buffer int

	mu sync.Mutex
	// cache maps backing keys to encoded values; a nil entry is a known null.
	cache     map[string][]byte
	userState *broadcast.Channel[*domain.UserState]
	orgFlows  map[domain.UserID]*broadcast.Channel[[]domain.Organization]
}

// New returns a Source persisting into raw.
func New(raw domain.RawStore, opts ...Option) *Source {
	s := &Source{
		raw:      raw,
		log:      zap.NewNop(),
		prefix:   DefaultKeyPrefix,
		buffer:   broadcast.DefaultBuffer,
		cache:    make(map[string][]byte),
		orgFlows: make(map[domain.UserID]*broadcast.Channel[[]domain.Organization]),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ---------- Device ----------

// UniqueAppID returns the device identifier, generating and persisting it on
// first use.
func (s *Source) UniqueAppID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := deviceKeyName(s.prefix, appIDKey)
	id, err := load[*string](s, key)
	if err != nil {
		return "", err
	}
	if id != nil {
		return *id, nil
	}
	fresh := uuid.NewString()
	if err := put(s, key, &fresh); err != nil {
		return "", err
	}
	s.log.Info("generated unique app id")
	return fresh, nil
}

// RememberedEmail returns the email to prefill at login, or nil.
func (s *Source) RememberedEmail() (*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return load[*string](s, deviceKeyName(s.prefix, rememberedEmailKey))
}

// StoreRememberedEmail sets or clears (nil) the remembered email.
func (s *Source) StoreRememberedEmail(email *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return put(s, deviceKeyName(s.prefix, rememberedEmailKey), email)
}

// ---------- User state ----------

// UserState returns the device-wide user state, or nil.
func (s *Source) UserState() (*domain.UserState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return load[*domain.UserState](s, deviceKeyName(s.prefix, stateKey))
}

// SetUserState replaces the user state and emits it on the user state flow.
// nil clears it.
func (s *Source) SetUserState(state *domain.UserState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := put(s, deviceKeyName(s.prefix, stateKey), state); err != nil {
		return err
	}
	if s.userState == nil {
		s.userState = s.newUserStateFlow(state.Clone())
	} else {
		s.userState.Publish(state.Clone())
	}
	s.log.Debug("user state set",
		zap.Bool("null", state == nil),
		zap.String("active", activeUser(state)))
	return nil
}

// UserStateFlow subscribes to user state changes. The current value is
// delivered first. The subscription ends when ctx is done or on Cancel.
func (s *Source) UserStateFlow(ctx context.Context) (domain.Subscription[*domain.UserState], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userState == nil {
		state, err := load[*domain.UserState](s, deviceKeyName(s.prefix, stateKey))
		if err != nil {
			return nil, err
		}
		s.userState = s.newUserStateFlow(state)
	}
	return s.userState.Subscribe(ctx), nil
}

// ---------- Lifecycle ----------

// ClearData removes every attribute stored for userID and discards its
// organizations flow without emitting. Existing subscribers of that flow
// receive nothing further. The user state is not modified. Every kind is
// attempted; failures are combined.
func (s *Source) ClearData(userID domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	for _, kind := range kinds {
		key := userKeyName(s.prefix, kind, string(userID))
		err = multierr.Append(err, s.raw.WriteRaw(key, nil))
		// Forget the cached value either way, so a failed delete is re-read
		// from the backing store rather than assumed gone.
		delete(s.cache, key)
	}
	if ch, ok := s.orgFlows[userID]; ok {
		ch.Detach()
		delete(s.orgFlows, userID)
	}

	s.log.Info("cleared user data", zap.String("user", string(userID)), zap.Error(err))
	return err
}

// ---------- Per-user attributes ----------

// LastActiveTimeMillis returns the last activity time in unix millis, or nil.
func (s *Source) LastActiveTimeMillis(userID domain.UserID) (*int64, error) {
	return getAttr[*int64](s, KindLastActiveTime, userID)
}

// StoreLastActiveTimeMillis sets or clears the last activity time.
func (s *Source) StoreLastActiveTimeMillis(userID domain.UserID, millis *int64) error {
	return putAttr(s, KindLastActiveTime, userID, millis)
}

// UserKey returns the encrypted user key, or nil.
func (s *Source) UserKey(userID domain.UserID) (*string, error) {
	return getAttr[*string](s, KindUserKey, userID)
}

// StoreUserKey sets or clears the encrypted user key.
func (s *Source) StoreUserKey(userID domain.UserID, key *string) error {
	return putAttr(s, KindUserKey, userID, key)
}

// PrivateKey returns the encrypted private key, or nil.
func (s *Source) PrivateKey(userID domain.UserID) (*string, error) {
	return getAttr[*string](s, KindPrivateKey, userID)
}

// StorePrivateKey sets or clears the encrypted private key.
func (s *Source) StorePrivateKey(userID domain.UserID, key *string) error {
	return putAttr(s, KindPrivateKey, userID, key)
}

// UserAutoUnlockKey returns the auto-unlock key, or nil.
func (s *Source) UserAutoUnlockKey(userID domain.UserID) (*string, error) {
	return getAttr[*string](s, KindUserAutoUnlockKey, userID)
}

// StoreUserAutoUnlockKey sets or clears the auto-unlock key.
func (s *Source) StoreUserAutoUnlockKey(userID domain.UserID, key *string) error {
	return putAttr(s, KindUserAutoUnlockKey, userID, key)
}

// OrganizationKeys returns the organization id to key material map, or nil.
func (s *Source) OrganizationKeys(userID domain.UserID) (map[string]string, error) {
	return getAttr[map[string]string](s, KindOrganizationKeys, userID)
}

// StoreOrganizationKeys sets or clears the organization keys.
func (s *Source) StoreOrganizationKeys(userID domain.UserID, keys map[string]string) error {
	return putAttr(s, KindOrganizationKeys, userID, keys)
}

// Organizations returns the user's organizations, or nil.
func (s *Source) Organizations(userID domain.UserID) ([]domain.Organization, error) {
	return getAttr[[]domain.Organization](s, KindOrganizations, userID)
}

// StoreOrganizations sets or clears the user's organizations and emits the
// new value on that user's organizations flow.
func (s *Source) StoreOrganizations(userID domain.UserID, orgs []domain.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userKeyName(s.prefix, KindOrganizations, string(userID))
	if err := put(s, key, orgs); err != nil {
		return err
	}
	// Re-read so the flow never aliases the caller's slice.
	stored, err := load[[]domain.Organization](s, key)
	if err != nil {
		return err
	}
	if ch, ok := s.orgFlows[userID]; ok {
		ch.Publish(stored)
	} else {
		s.orgFlows[userID] = s.newOrgFlow(stored)
	}
	s.log.Debug("stored attribute",
		zap.String("kind", string(KindOrganizations)),
		zap.String("user", string(userID)),
		zap.Int("count", len(orgs)))
	return nil
}

// OrganizationsFlow subscribes to the user's organizations. The current value
// is delivered first.
func (s *Source) OrganizationsFlow(
	ctx context.Context,
	userID domain.UserID,
) (domain.Subscription[[]domain.Organization], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.orgFlows[userID]
	if !ok {
		orgs, err := load[[]domain.Organization](s, userKeyName(s.prefix, KindOrganizations, string(userID)))
		if err != nil {
			return nil, err
		}
		ch = s.newOrgFlow(orgs)
		s.orgFlows[userID] = ch
	}
	return ch.Subscribe(ctx), nil
}

// ---------- Generic access ----------

// Get returns the JSON encoding of kind for userID; absent values read as
// JSON null.
func (s *Source) Get(kind Kind, userID domain.UserID) (json.RawMessage, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.read(userKeyName(s.prefix, kind, string(userID)))
	if err != nil {
		return nil, err
	}
	if b == nil {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(b), nil
}

// Put decodes raw as the value type of kind and stores it through the typed
// setter, so side effects such as flow emission apply.
func (s *Source) Put(kind Kind, userID domain.UserID, raw json.RawMessage) error {
	switch kind {
	case KindLastActiveTime:
		return putJSON(raw, func(v *int64) error { return s.StoreLastActiveTimeMillis(userID, v) })
	case KindUserKey:
		return putJSON(raw, func(v *string) error { return s.StoreUserKey(userID, v) })
	case KindPrivateKey:
		return putJSON(raw, func(v *string) error { return s.StorePrivateKey(userID, v) })
	case KindUserAutoUnlockKey:
		return putJSON(raw, func(v *string) error { return s.StoreUserAutoUnlockKey(userID, v) })
	case KindOrganizationKeys:
		return putJSON(raw, func(v map[string]string) error { return s.StoreOrganizationKeys(userID, v) })
	case KindOrganizations:
		return putJSON(raw, func(v []domain.Organization) error { return s.StoreOrganizations(userID, v) })
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// ---------- helpers ----------

func putJSON[T any](raw json.RawMessage, set func(T) error) error {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	return set(v)
}

func getAttr[T any](s *Source, kind Kind, userID domain.UserID) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return load[T](s, userKeyName(s.prefix, kind, string(userID)))
}

func putAttr[T any](s *Source, kind Kind, userID domain.UserID, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := put(s, userKeyName(s.prefix, kind, string(userID)), v); err != nil {
		return err
	}
	s.log.Debug("stored attribute",
		zap.String("kind", string(kind)),
		zap.String("user", string(userID)))
	return nil
}

// read returns the encoded value for key. Caller holds s.mu.
func (s *Source) read(key string) ([]byte, error) {
	if b, ok := s.cache[key]; ok {
		return b, nil
	}
	b, err := s.raw.ReadRaw(key)
	if err != nil {
		return nil, err
	}
	s.cache[key] = b
	return b, nil
}

// load decodes the value for key into a fresh T. Caller holds s.mu.
func load[T any](s *Source, key string) (T, error) {
	var out T
	b, err := s.read(key)
	if err != nil || b == nil {
		return out, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}

// put encodes v and writes it through to the backing store, then the cache.
// A value encoding to JSON null deletes the record. Caller holds s.mu.
func put[T any](s *Source, key string, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if string(b) == "null" {
		b = nil
	}
	if err := s.raw.WriteRaw(key, b); err != nil {
		return err
	}
	s.cache[key] = b
	return nil
}

// Each subscriber gets its own copy, so a subscriber editing what it received
// cannot change what later subscribers are replayed.
func (s *Source) newUserStateFlow(state *domain.UserState) *broadcast.Channel[*domain.UserState] {
	return broadcast.New(state,
		broadcast.WithBuffer(s.buffer),
		broadcast.WithClone((*domain.UserState).Clone))
}

func (s *Source) newOrgFlow(orgs []domain.Organization) *broadcast.Channel[[]domain.Organization] {
	return broadcast.New(orgs,
		broadcast.WithBuffer(s.buffer),
		broadcast.WithClone(cloneOrganizations))
}

func cloneOrganizations(orgs []domain.Organization) []domain.Organization {
	return slices.Clone(orgs)
}

func activeUser(state *domain.UserState) string {
	if state == nil {
		return ""
	}
	return string(state.ActiveUserID)
}

// Compile-time assertion that Source implements domain.AuthDiskSource.
var _ domain.AuthDiskSource = (*Source)(nil)
