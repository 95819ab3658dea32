package authdisk

import (
	"errors"
	"fmt"
	"strings"
)

// Kind names one per-user attribute.
type Kind string

const (
	KindLastActiveTime    Kind = "lastActiveTime"
	KindUserKey           Kind = "userKey"
	KindPrivateKey        Kind = "privateKey"
	KindUserAutoUnlockKey Kind = "userAutoUnlockKey"
	KindOrganizationKeys  Kind = "organizationKeys"
	KindOrganizations     Kind = "organizations"
)

// ErrUnknownKind is returned when parsing a name that is not a Kind.
var ErrUnknownKind = errors.New("unknown attribute kind")

var kinds = []Kind{
	KindLastActiveTime,
	KindUserKey,
	KindPrivateKey,
	KindUserAutoUnlockKey,
	KindOrganizationKeys,
	KindOrganizations,
}

// Kinds returns every per-user attribute kind.
func Kinds() []Kind {
	return append([]Kind(nil), kinds...)
}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, error) {
	for _, k := range kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Secret reports whether the kind holds key material.
func (k Kind) Secret() bool {
	switch k {
	case KindUserKey, KindPrivateKey, KindUserAutoUnlockKey, KindOrganizationKeys:
		return true
	}
	return false
}

// Device-scoped record names.
const (
	stateKey           = "state"
	appIDKey           = "appId"
	rememberedEmailKey = "rememberedEmail"
)

// DefaultKeyPrefix namespaces every record written by a Source.
const DefaultKeyPrefix = "authstate"

func userKeyName(prefix string, kind Kind, userID string) string {
	return prefix + ":" + string(kind) + "_" + userID
}

func deviceKeyName(prefix, name string) string {
	return prefix + ":" + name
}

// SecretKeyMatcher reports whether a backing key written under prefix holds
// key material. It is meant for store.WithSealedKeys.
func SecretKeyMatcher(prefix string) func(key string) bool {
	head := prefix + ":"
	return func(key string) bool {
		rest, ok := strings.CutPrefix(key, head)
		if !ok {
			return false
		}
		name, _, ok := strings.Cut(rest, "_")
		return ok && Kind(name).Secret()
	}
}
