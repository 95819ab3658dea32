package domain

import (
	interfaces "authstate/internal/domain/interfaces"
	types "authstate/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	UserID             = types.UserID
	OrganizationID     = types.OrganizationID
	UserState          = types.UserState
	Account            = types.Account
	Profile            = types.Profile
	Tokens             = types.Tokens
	AccountSettings    = types.AccountSettings
	KdfType            = types.KdfType
	Organization       = types.Organization
	OrganizationType   = types.OrganizationType
	OrganizationStatus = types.OrganizationStatus
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	RawStore       = interfaces.RawStore
	AuthDiskSource = interfaces.AuthDiskSource
	AccountService = interfaces.AccountService
	AccountSummary = interfaces.AccountSummary
)

// Subscription is a replaying change stream handed out by AuthDiskSource.
type Subscription[T any] = interfaces.Subscription[T]
