// Package database records realtime socket IDs in the debate server's
// PostgreSQL database.
//
// The agent writes the server-assigned socket ID for its user row on
// connect and clears it on shutdown, so server-side pushes can find it.
// The database is optional; without it the agent only holds the socket.
package database
