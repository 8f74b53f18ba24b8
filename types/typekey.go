package types

// TypeKey identifies a group of items that can share a recyclable view.
//
// Two items with the same TypeKey are interchangeable as far as pooling is
// concerned: a slot constructed for one can be rebound to display any other.
// Typical sources are presentation template names ("header", "message",
// "image-row").
//
// TypeKey is an opaque comparable value; the library never interprets its
// contents beyond equality and deterministic ordering.
type TypeKey string

// String returns the raw key value.
func (k TypeKey) String() string {
	return string(k)
}
