// Package tools runs the admin tool on behalf of the pad control client.
//
// Ownership boundary:
// - local and remote command execution
//
// - the tagged invocation outcome (completed, launch failure, timeout)
//
// Runners never interpret output. Classification belongs to package padctl.
package tools
