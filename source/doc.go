// Package source provides built-in item source implementations.
//
// An item source describes the list content being recycled: how many items
// exist and which template type each index renders with. The coordinator
// queries it on every window change, so implementations must answer in O(1).
// The package includes:
//
//   - Static: Fixed slice of type keys, updatable in place
//   - Func: Adapter over a pair of closures
//
// Custom sources can be implemented by satisfying the types.ItemSource
// interface.
package source
