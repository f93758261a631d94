package safeconv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/hookpatch/pkg/safeconv"
)

func TestMustIntToUint64(t *testing.T) {
	t.Parallel()

	t.Run("zero", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, uint64(0), safeconv.MustIntToUint64(0))
	})

	t.Run("byte_count", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, uint64(161), safeconv.MustIntToUint64(161))
	})

	t.Run("negative_panics", func(t *testing.T) {
		t.Parallel()

		assert.PanicsWithValue(t, "safeconv: negative int to uint64 conversion", func() {
			safeconv.MustIntToUint64(-1)
		})
	})
}
