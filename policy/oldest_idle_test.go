package policy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lelandrichardson/recycler/types"
)

func TestOldestIdle_PickSlot(t *testing.T) {
	t.Run("picks lowest idle stamp", func(t *testing.T) {
		p := NewOldestIdle()
		free := []types.SlotInfo{
			{ID: 1, IdleSeq: 7},
			{ID: 2, IdleSeq: 3},
			{ID: 3, IdleSeq: 5},
		}

		require.Equal(t, 1, p.PickSlot(free))
	})

	t.Run("breaks ties by creation order", func(t *testing.T) {
		p := NewOldestIdle()
		free := []types.SlotInfo{
			{ID: 9, IdleSeq: 0},
			{ID: 4, IdleSeq: 0},
			{ID: 6, IdleSeq: 0},
		}

		require.Equal(t, 1, p.PickSlot(free))
	})

	t.Run("single candidate", func(t *testing.T) {
		p := NewOldestIdle()

		require.Equal(t, 0, p.PickSlot([]types.SlotInfo{{ID: 1, IdleSeq: 42}}))
	})

	t.Run("deterministic for identical inputs", func(t *testing.T) {
		p := NewOldestIdle()
		free := []types.SlotInfo{
			{ID: 2, IdleSeq: 10},
			{ID: 1, IdleSeq: 10},
		}

		first := p.PickSlot(free)
		for range 10 {
			require.Equal(t, first, p.PickSlot(free))
		}
	})
}
