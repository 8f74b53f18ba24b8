// Package policy provides built-in recycling policy implementations.
//
// Two policy points exist in the pool registry:
//
//   - RecyclePolicy: which free slot to reuse first. OldestIdle (the default)
//     reuses the slot idle the longest, maximizing time-since-last-shown
//     before reuse so late async content updates are least likely to land on
//     an already-reassigned slot.
//   - OverflowPolicy: which indices stay bound when a pool's capacity ceiling
//     is smaller than the required set. NearestCenter (the default) keeps the
//     indices closest to the visible midpoint.
//
// Both defaults are deterministic, including tie-breaks, so reconciliation is
// reproducible for identical inputs. Custom policies can be implemented by
// satisfying the types.RecyclePolicy and types.OverflowPolicy interfaces.
package policy
