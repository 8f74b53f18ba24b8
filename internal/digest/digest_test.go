package digest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lelandrichardson/recycler/types"
)

func TestAssignment_Deterministic(t *testing.T) {
	a := types.PoolAssignment{
		RequestID: 1,
		Assignment: map[types.TypeKey][]int{
			"a": {0, 2, 4},
			"b": {1, 3},
		},
	}
	b := types.PoolAssignment{
		RequestID: 2, // different request, same content
		Assignment: map[types.TypeKey][]int{
			"b": {1, 3},
			"a": {0, 2, 4},
		},
	}

	require.Equal(t, Assignment(a), Assignment(b))
}

func TestAssignment_ContentSensitive(t *testing.T) {
	base := types.PoolAssignment{
		Assignment: map[types.TypeKey][]int{"a": {0, 1, 2}},
	}

	t.Run("different indices", func(t *testing.T) {
		other := types.PoolAssignment{
			Assignment: map[types.TypeKey][]int{"a": {0, 1, 3}},
		}
		require.NotEqual(t, Assignment(base), Assignment(other))
	})

	t.Run("different order", func(t *testing.T) {
		other := types.PoolAssignment{
			Assignment: map[types.TypeKey][]int{"a": {2, 1, 0}},
		}
		require.NotEqual(t, Assignment(base), Assignment(other))
	})

	t.Run("different type key", func(t *testing.T) {
		other := types.PoolAssignment{
			Assignment: map[types.TypeKey][]int{"b": {0, 1, 2}},
		}
		require.NotEqual(t, Assignment(base), Assignment(other))
	})

	t.Run("index moved across types", func(t *testing.T) {
		x := types.PoolAssignment{
			Assignment: map[types.TypeKey][]int{"a": {0, 1}, "b": {2}},
		}
		y := types.PoolAssignment{
			Assignment: map[types.TypeKey][]int{"a": {0}, "b": {1, 2}},
		}
		require.NotEqual(t, Assignment(x), Assignment(y))
	})
}

func TestAssignment_Empty(t *testing.T) {
	require.Equal(t, Assignment(types.PoolAssignment{}), Assignment(types.PoolAssignment{Assignment: map[types.TypeKey][]int{}}))
}
