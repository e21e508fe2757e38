// Package ws implements the WebSocket hub for the DOCRAT server.
//
// Hub is the connection registry: Register, Deregister (idempotent), Count
// and Broadcast, which marshals an envelope once and hands it to every
// connection registered when the broadcast starts. A connection whose Send
// fails (closed, or its 16-frame buffer is full) is deregistered in the same
// call; the rest still receive the frame.
//
// Hub.ServeHTTP is the session handler mounted at /ws. Each session:
//
//   - gets a UUID and an initial_data envelope holding the current snapshot,
//     queued and registered under the hub lock so no update slips in between
//   - answers {"type":"ping"} with a pong sent only to that client
//   - echoes any other JSON message back as {"type":"echo","data":...}
//   - logs and ignores frames that are not valid JSON
//   - is deregistered when the client closes or stops answering pings
//
// Hub.Run(ctx) blocks until ctx is cancelled, then closes every connection.
// Broadcasting is driven by the scheduler, not by the hub.
package ws
