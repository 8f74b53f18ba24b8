// Package digest computes stable fingerprints of boundary messages.
//
// The transport may duplicate PoolAssignments (at-least-once delivery,
// timeout re-issues answered twice). Rather than diffing full payloads, the
// registry keeps the digest of the last applied assignment and short-circuits
// byte-identical replays to a single no-op pass.
package digest

import (
	"encoding/binary"
	"slices"

	"github.com/zeebo/xxh3"

	"github.com/lelandrichardson/recycler/types"
)

// separator terminates variable-length fields so that ("ab", [1]) and
// ("a", "b1"-ish payloads) cannot collide.
var separator = []byte{0xff}

// Assignment returns a stable 64-bit fingerprint of an assignment payload.
//
// The RequestID is deliberately excluded: two assignments with identical
// content are interchangeable for reconciliation regardless of which request
// they answered. Type keys are visited in sorted order so map iteration
// order never affects the result.
//
// Parameters:
//   - a: Assignment to fingerprint
//
// Returns:
//   - uint64: Content fingerprint
func Assignment(a types.PoolAssignment) uint64 {
	keys := make([]types.TypeKey, 0, len(a.Assignment))
	for k := range a.Assignment {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	h := xxh3.New()
	var buf [8]byte
	for _, k := range keys {
		_, _ = h.WriteString(string(k))
		_, _ = h.Write(separator)
		for _, idx := range a.Assignment[k] {
			binary.LittleEndian.PutUint64(buf[:], uint64(idx)) //nolint:gosec // indices are non-negative
			_, _ = h.Write(buf[:])
		}
		_, _ = h.Write(separator)
	}

	return h.Sum64()
}
