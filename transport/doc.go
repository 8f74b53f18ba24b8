// Package transport carries the boundary messages between the presentation
// and content actors.
//
// Both directions are asynchronous and bounded: a RangeRequest or
// PoolAssignment is O(window size) regardless of the total item count. The
// coordinator tolerates dropped, duplicated, and reordered messages, so
// transports are allowed to shed load instead of blocking — SendRequest and
// SendAssignment never block, and inbound messages are dropped when the
// receiver falls behind.
//
// The package includes:
//
//   - ChannelPair: In-process buffered channels, the default when both actors
//     share a process
//   - NATSPresentation / NATSContent: JSON over core NATS subjects, for a
//     content actor in another process
package transport
