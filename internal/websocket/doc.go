// Package websocket serves live dashboard sessions. A browser sends its
// filter selection as {"type":"filter","filter":{...}} and receives the
// recomputed dashboard as {"type":"dashboard","data":{...}}, or an RFC 7807
// problem as {"type":"error","error":{...}}. Heartbeat messages are
// accepted silently; the server pings to detect dead peers.
//
// Each session runs a read pump and a write pump goroutine. Sessions share
// nothing but the read-only dataset behind the Renderer.
package websocket
