package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaskForeground(t *testing.T) {
	m := NewMask(2, 2)
	m.Set(0, 0, LabelForeground)
	m.Set(0, 1, LabelProbableForeground)
	m.Set(1, 0, LabelProbableBackground)
	m.Set(1, 1, LabelBackground)

	fg := m.Foreground()
	require.True(t, fg.At(0, 0))
	require.True(t, fg.At(0, 1))
	require.False(t, fg.At(1, 0))
	require.False(t, fg.At(1, 1))
	require.False(t, fg.At(-1, 0))
	require.Equal(t, 2, fg.Count())
	require.False(t, fg.Empty())
	require.Equal(t, []byte{255, 255, 0, 0}, fg.Bytes())
}

func TestBinaryMaskEmpty(t *testing.T) {
	require.True(t, NewMask(3, 3).Foreground().Empty())
}

func TestImage8Gray(t *testing.T) {
	im := NewImage8(2, 3)
	im.SetGray(1, 2, 200)
	require.Equal(t, uint8(200), im.Gray(1, 2))
	require.Equal(t, []uint8{200, 200, 200}, im.Pix[15:18])
	require.Equal(t, 3, im.Bounds().Dx())
}
