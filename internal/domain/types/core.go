package types

// UserID identifies an account on this device. It is the only partition key
// for per-user data.
type UserID string

// String returns the string form of the user id.
func (u UserID) String() string { return string(u) }

// OrganizationID identifies an organization a user belongs to.
type OrganizationID string

// String returns the string form of the organization id.
func (id OrganizationID) String() string { return string(id) }
