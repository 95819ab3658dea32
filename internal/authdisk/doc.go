// Package authdisk is the multi-user authentication state store.
//
// A Source keeps, per user id, a fixed set of attributes (key material,
// organization keys and memberships, last activity) plus one device-wide
// UserState record naming the active account. Values are JSON-encoded into a
// domain.RawStore and served from a read-through cache.
//
// Writes are synchronous: the backing store is updated first, then the cache,
// then any change stream. A failed backing write changes nothing and emits
// nothing; the backing error is returned as is.
//
// UserStateFlow and OrganizationsFlow return subscriptions whose first value
// is the state at the moment of subscribing, followed by every later write in
// order. See package broadcast for delivery semantics.
package authdisk
