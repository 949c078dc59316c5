// Package padctl is the control-plane client for the virtual gamepad server.
//
// Ownership boundary:
// - pad index and selector normalization
//
// - decoding admin tool output into Result values
//
// - the server lifecycle, status, clear and password reset operations
//
// Operations never return errors. Every failure, local or remote, is reported
// through Result.Code and an ErrorEnvelope in Result.Details. Authoritative pad
// state lives in the server process; this package keeps none.
package padctl
