// Package content implements the content-actor side of the recycling
// protocol.
//
// The content actor is deliberately thin: it consumes RangeRequests from a
// content-side transport and answers each with a PoolAssignment grouping the
// requested range by template type. It holds no pool state; all
// reconciliation lives on the presentation side.
package content
