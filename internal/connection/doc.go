// Package connection owns the realtime connection to the debate server.
//
// The Registry hands out a single shared Handle:
//   - Created lazily on the first Get; later calls return the same Handle
//   - The first address supplied wins; later addresses are ignored
//   - Get never blocks; dialing, heartbeat and reconnection run in the background
//   - Transport failures surface on Handle.Errors(), never from Get
//
// Pool is the keyed variant: one Handle per distinct normalized address.
//
// Wire protocol: plain WebSocket text frames, one JSON object per event,
// {"event": "<name>", "data": <json>}. The server must speak this framing;
// socket.io servers (Engine.IO handshake and packet prefixes) are not supported.
// Handle IDs are generated by the client, not assigned by the server.
package connection
