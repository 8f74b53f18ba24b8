// Package types provides core type definitions and interfaces for the Recycler library.
//
// This package contains shared types that are used across multiple packages in the
// Recycler library. By keeping these types in a separate package, we avoid import
// cycles between the main recycler package and its internal implementations.
//
// Key types:
//   - TypeKey: Identifier grouping interchangeable recyclable views
//   - VisibleWindow: Index window currently required on screen
//   - RangeRequest / PoolAssignment: Boundary messages between the presentation
//     and content actors
//   - RebindNotification: Generation-stamped slot rebind event
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
