// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Connection handles created and current connection state
//   - Reconnect attempts
//   - Events received, sent and dropped per event name
//   - Address conflicts seen by the connection registry
package metrics
