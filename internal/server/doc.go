// Package server assembles the shell API: the bridge client, the
// composed shell controller, and the Gin router with its middleware
// chain and WebSocket event stream.
package server
