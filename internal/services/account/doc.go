// Package account manages the accounts logged in on this device.
//
// It layers login, account switching, lock and logout on top of the
// domain.AuthDiskSource. Removing an account's stored attributes and changing
// which account is active are separate operations on the disk source; Logout
// performs both, LockAccount only drops the auto-unlock key.
package account
