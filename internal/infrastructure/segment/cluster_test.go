package segment

import (
	"testing"

	"github.com/stretchr/testify/require"

	"defect-refiner/internal/domain/entity"
)

func squareImage(size, lo, hi int, value uint8) *entity.Image8 {
	img := entity.NewImage8(size, size)
	for r := lo; r < hi; r++ {
		for c := lo; c < hi; c++ {
			img.SetGray(r, c, value)
		}
	}
	return img
}

func TestClusterSegmenter_SeparatesBrightSquare(t *testing.T) {
	img := squareImage(32, 12, 20, 200)
	box := entity.Box{X1: 6, Y1: 6, X2: 26, Y2: 26}

	mask, err := NewClusterSegmenter().Segment(img, box, 5)
	require.NoError(t, err)

	fg := mask.Foreground()
	require.Equal(t, 64, fg.Count())
	require.True(t, fg.At(12, 12))
	require.False(t, fg.At(11, 12))
	require.Equal(t, entity.LabelBackground, mask.At(0, 0))
	require.Equal(t, entity.LabelProbableBackground, mask.At(6, 6))
	require.Equal(t, entity.LabelProbableForeground, mask.At(15, 15))
}

func TestClusterSegmenter_UniformImageHasNoForeground(t *testing.T) {
	img := entity.NewImage8(16, 16)
	mask, err := NewClusterSegmenter().Segment(img, entity.Box{X1: 2, Y1: 2, X2: 12, Y2: 12}, 5)
	require.NoError(t, err)
	require.True(t, mask.Foreground().Empty())
}

func TestClusterSegmenter_BoxCoversWholeImage(t *testing.T) {
	img := squareImage(16, 6, 10, 255)
	mask, err := NewClusterSegmenter().Segment(img, entity.Box{X1: 0, Y1: 0, X2: 16, Y2: 16}, 5)
	require.NoError(t, err)
	require.Equal(t, 16, mask.Foreground().Count())
}

func TestClusterSegmenter_InvalidInput(t *testing.T) {
	img := entity.NewImage8(8, 8)
	s := NewClusterSegmenter()

	_, err := s.Segment(img, entity.Box{X1: 3, Y1: 3, X2: 3, Y2: 6}, 5)
	require.Error(t, err)

	_, err = s.Segment(img, entity.Box{X1: 0, Y1: 0, X2: 9, Y2: 8}, 5)
	require.Error(t, err)

	_, err = s.Segment(img, entity.Box{X1: 0, Y1: 0, X2: 4, Y2: 4}, 0)
	require.Error(t, err)

	_, err = s.Segment(nil, entity.Box{X1: 0, Y1: 0, X2: 4, Y2: 4}, 5)
	require.Error(t, err)
}

func TestClusterSegmenter_Deterministic(t *testing.T) {
	img := squareImage(24, 8, 14, 180)
	box := entity.Box{X1: 2, Y1: 2, X2: 20, Y2: 20}
	a, err := NewClusterSegmenter().Segment(img, box, 5)
	require.NoError(t, err)
	b, err := NewClusterSegmenter().Segment(img, box, 5)
	require.NoError(t, err)
	require.Equal(t, a, b)
}
