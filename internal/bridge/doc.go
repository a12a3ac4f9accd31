// Package bridge implements the command bridge to the privacy backend.
//
// The shell never computes privacy results itself; every subsystem
// delegates to the backend through logical request/response commands
// (identity fetches, tab lifecycle, auth unlock, tool sessions, download
// control, virtual keyboard processing). This package owns the transport
// for those commands and nothing else: components depend on the narrow
// Invoker interface and decode typed results through Commands.
//
// Transport is HTTP POST to {endpoint}/invoke/{command} with a JSON
// params object, answered by a {success, data, error} envelope. Calls
// are guarded by a circuit breaker so a wedged backend fails fast
// instead of stacking up UI-blocking round-trips. No call is retried at
// this layer; surfacing failures inline is the callers' job.
package bridge
