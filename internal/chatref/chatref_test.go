package chatref

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("NumericID", func(t *testing.T) {
		ref := Parse("123456")
		require.True(t, ref.IsNumeric())
		require.Equal(t, int64(123456), ref.ID())
		require.Equal(t, "123456", ref.String())
	})

	t.Run("NegativeNumericID", func(t *testing.T) {
		ref := Parse("-100555")
		require.True(t, ref.IsNumeric())
		require.Equal(t, int64(-100555), ref.ID())
	})

	t.Run("Handle", func(t *testing.T) {
		ref := Parse("@mychannel")
		require.False(t, ref.IsNumeric())
		require.Equal(t, "@mychannel", ref.Handle())
		require.Equal(t, "@mychannel", ref.String())
	})

	t.Run("BareHandleGetsAtPrefix", func(t *testing.T) {
		ref := Parse("mychannel")
		require.False(t, ref.IsNumeric())
		require.Equal(t, "@mychannel", ref.Handle())
	})

	t.Run("DigitsWithLettersIsHandle", func(t *testing.T) {
		ref := Parse("12a34")
		require.False(t, ref.IsNumeric())
		require.Equal(t, "@12a34", ref.Handle())
	})

	t.Run("LoneMinusIsHandle", func(t *testing.T) {
		ref := Parse("-")
		require.False(t, ref.IsNumeric())
	})

	t.Run("InnerMinusIsHandle", func(t *testing.T) {
		ref := Parse("12-34")
		require.False(t, ref.IsNumeric())
	})
}

func TestRefAsMapKey(t *testing.T) {
	m := map[Ref]int{}
	m[FromID(-100555)] = 1
	m[FromHandle("mychannel")] = 2

	require.Equal(t, 1, m[Parse("-100555")])
	require.Equal(t, 2, m[Parse("@mychannel")])

	// A numeric id and a handle for the same channel stay distinct keys.
	require.NotEqual(t, FromID(-100555), FromHandle("-100555"))
}
