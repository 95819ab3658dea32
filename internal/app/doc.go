// Package app wires application dependencies for the CLI.
//
// It loads Config, opens the backing store selected there, optionally seals
// secret attributes with a passphrase, and builds the auth disk source and
// account service exposed through the Wire struct.
package app
