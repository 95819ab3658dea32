// Package domain defines core data models and interfaces shared across the app.
// It contains plain types (user state, organizations) and contracts
// (backing store, disk source, account service) only.
package domain
