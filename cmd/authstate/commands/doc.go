// Package commands defines the authstate CLI and wires dependencies for subcommands.
//
// Commands
//
//   - app-id     Print the device's unique application id
//   - accounts   List accounts, most recently active first
//   - login      Add an account to the device
//   - switch     Make an account active
//   - logout     Remove an account and all of its stored data
//   - lock       Drop an account's auto-unlock key
//   - get        Print one stored attribute as JSON
//   - put        Store one attribute from JSON
//   - clear      Remove every stored attribute of a user
//   - email      Show, set or forget the remembered login email
//   - watch      Stream user state or organization changes as JSON lines
//
// # Implementation
//
// The root command loads the YAML config, applies flag overrides, and builds
// the backing store and services before any subcommand runs. The store is
// closed once the command returns.
package commands
