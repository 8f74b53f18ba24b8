package geometry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUniform(t *testing.T) {
	g := NewUniform(50)

	t.Run("index at", func(t *testing.T) {
		require.Equal(t, 0, g.IndexAt(0))
		require.Equal(t, 0, g.IndexAt(49.9))
		require.Equal(t, 1, g.IndexAt(50))
		require.Equal(t, 10, g.IndexAt(525))
	})

	t.Run("negative offset clamps to zero", func(t *testing.T) {
		require.Equal(t, 0, g.IndexAt(-100))
	})

	t.Run("extent is constant", func(t *testing.T) {
		require.Equal(t, 50.0, g.ExtentOf(0))
		require.Equal(t, 50.0, g.ExtentOf(999))
	})

	t.Run("nonpositive extent defaults", func(t *testing.T) {
		require.Equal(t, 1.0, NewUniform(0).ExtentOf(0))
	})
}

func TestMeasured(t *testing.T) {
	// Items at offsets 0, 30, 110, 110, 160.
	g := NewMeasured([]float64{30, 80, 0, 50, 40})

	t.Run("index at", func(t *testing.T) {
		require.Equal(t, 0, g.IndexAt(0))
		require.Equal(t, 0, g.IndexAt(29))
		require.Equal(t, 1, g.IndexAt(30))
		require.Equal(t, 1, g.IndexAt(109))
		// Item 2 is collapsed; offset 110 belongs to item 3.
		require.Equal(t, 3, g.IndexAt(110))
		require.Equal(t, 4, g.IndexAt(199))
	})

	t.Run("past end clamps to last item", func(t *testing.T) {
		require.Equal(t, 4, g.IndexAt(200))
		require.Equal(t, 4, g.IndexAt(10000))
	})

	t.Run("extents", func(t *testing.T) {
		require.Equal(t, 80.0, g.ExtentOf(1))
		require.Equal(t, 0.0, g.ExtentOf(2))
		require.Equal(t, 0.0, g.ExtentOf(-1))
		require.Equal(t, 0.0, g.ExtentOf(5))
		require.Equal(t, 200.0, g.TotalExtent())
	})

	t.Run("empty", func(t *testing.T) {
		e := NewMeasured(nil)
		require.Equal(t, 0, e.IndexAt(100))
		require.Equal(t, 0.0, e.TotalExtent())
	})
}
