// Package server hosts the local HTTP bridge between a UI process and the
// pad control client.
//
// Operation routes always answer 200 with the operation Result; the result
// code, not the HTTP status, reports admin tool failures. Non-200 statuses
// are reserved for the bridge itself (auth, rate limit, malformed body).
package server
