// Package server wires and runs the remote store's HTTP server.
//
// It provides the server lifecycle, including startup, signal handling, and
// graceful shutdown. Shutdown also ends open change subscriptions, which
// the HTTP server itself does not track once upgraded to websockets.
package server
