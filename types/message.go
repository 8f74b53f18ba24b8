package types

// Boundary messages exchanged between the presentation and content actors.
//
// Both messages are bounded to O(window size) regardless of total item count.
// The transport may drop, duplicate, or reorder them; the coordinator is safe
// under all three (monotonic request IDs plus generation-stamped rebinds).

// RangeRequest asks the content layer to cover an index range with slots.
//
// Types is aligned with the half-open range [Offset, Limit): Types[i] is the
// TypeKey of item Offset+i.
type RangeRequest struct {
	// RequestID is strictly monotonic per coordinator instance.
	RequestID uint64 `json:"requestId"`

	// Offset is the first index of the requested range (inclusive).
	Offset int `json:"offset"`

	// Limit is the end of the requested range (exclusive).
	Limit int `json:"limit"`

	// Types holds one TypeKey per index in [Offset, Limit).
	Types []TypeKey `json:"types"`
}

// Span returns the number of indices covered by the request.
func (r RangeRequest) Span() int {
	if r.Limit <= r.Offset {
		return 0
	}

	return r.Limit - r.Offset
}

// PoolAssignment is the content layer's reply to a RangeRequest.
//
// For every TypeKey it lists, in recycling order, the indices the pool of
// that type should now display.
type PoolAssignment struct {
	// RequestID echoes the RangeRequest this assignment answers.
	// Used for ordering and logging only; content is applied regardless of
	// staleness (stale assignments are merged, see the registry).
	RequestID uint64 `json:"requestId"`

	// Assignment maps each TypeKey to the ordered indices its pool covers.
	Assignment map[TypeKey][]int `json:"assignment"`
}

// IndexCount returns the total number of indices across all types.
func (a PoolAssignment) IndexCount() int {
	total := 0
	for _, indices := range a.Assignment {
		total += len(indices)
	}

	return total
}

// RebindNotification tells the content-binding collaborator that a slot now
// displays a new index.
//
// The collaborator must apply content only if the slot's generation still
// matches at apply time; a mismatch means the slot has since been rebound
// again and the update must be discarded.
type RebindNotification struct {
	TypeKey    TypeKey `json:"typeKey"`
	SlotID     uint64  `json:"slotId"`
	Index      int     `json:"index"`
	Generation uint64  `json:"generation"`
}
