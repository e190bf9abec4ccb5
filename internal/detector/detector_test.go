package detector

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-9

func TestHandLandmarks_NormalizedDistance(t *testing.T) {
	t.Run("scaled by wrist to index base", func(t *testing.T) {
		var hand HandLandmarks
		hand.Points[Wrist] = Point3D{X: 0.5, Y: 0.9}
		hand.Points[IndexMCP] = Point3D{X: 0.5, Y: 0.5}
		hand.Points[IndexTip] = Point3D{X: 0.1, Y: 0.1}
		hand.Points[MiddleTip] = Point3D{X: 0.3, Y: 0.1}

		assert.InDelta(t, 0.4, hand.HandSize(), epsilon)
		assert.InDelta(t, 0.5, hand.NormalizedDistance(IndexTip, MiddleTip), epsilon)
	})

	t.Run("zero hand size yields zero", func(t *testing.T) {
		var hand HandLandmarks
		hand.Points[IndexTip] = Point3D{X: 0.1, Y: 0.1}
		hand.Points[MiddleTip] = Point3D{X: 0.9, Y: 0.9}

		assert.Equal(t, 0.0, hand.NormalizedDistance(IndexTip, MiddleTip))
	})

	t.Run("depth is ignored", func(t *testing.T) {
		a := Point3D{X: 0, Y: 0, Z: 5}
		b := Point3D{X: 3, Y: 4, Z: -5}
		assert.InDelta(t, 5.0, Distance2D(a, b), epsilon)
	})
}

func TestHandLandmarks_Pixel(t *testing.T) {
	var hand HandLandmarks
	hand.Points[IndexTip] = Point3D{X: 0.25, Y: 0.5}

	x, y := hand.Pixel(IndexTip, 640, 480)
	assert.Equal(t, 160, x)
	assert.Equal(t, 240, y)
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)
		require.NoError(t, err)
		assert.Nil(t, hands)
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{OpenPalmLandmarks()})

		hands, err := mock.Detect(nil)
		require.NoError(t, err)
		assert.Len(t, hands, 1)
	})

	t.Run("plays back a sequence then goes quiet", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetSequence([][]HandLandmarks{{FistLandmarks()}, nil, {PointLandmarks()}})

		for i, want := range []int{1, 0, 1, 0, 0} {
			hands, err := mock.Detect(nil)
			require.NoError(t, err)
			assert.Len(t, hands, want, "call %d", i)
		}
		assert.Equal(t, 5, mock.Calls())
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()
		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)
		assert.ErrorIs(t, err, expectedErr)
		assert.Nil(t, hands)
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestFirst(t *testing.T) {
	assert.Nil(t, First(nil))

	hands := []HandLandmarks{FistLandmarks(), OpenPalmLandmarks()}
	first := First(hands)
	require.NotNil(t, first)
	assert.Equal(t, hands[0].Points, first.Points)
}

func TestPoseLandmarks(t *testing.T) {
	t.Run("hand size is fixed", func(t *testing.T) {
		hand := OpenPalmLandmarks()
		assert.InDelta(t, fixtureHandSize, hand.HandSize(), epsilon)
	})

	t.Run("extended fingers sit above their base", func(t *testing.T) {
		hand := OpenPalmLandmarks()
		for i := 1; i < 5; i++ {
			assert.Less(t, hand.Points[Tips[i]].Y, hand.Points[Bases[i]].Y, "finger %d", i)
		}
		assert.Less(t, hand.Points[ThumbTip].X, hand.Points[ThumbMCP].X)
	})

	t.Run("folded fingers sit below their base", func(t *testing.T) {
		hand := FistLandmarks()
		for i := 1; i < 5; i++ {
			assert.Greater(t, hand.Points[Tips[i]].Y, hand.Points[Bases[i]].Y, "finger %d", i)
		}
		assert.GreaterOrEqual(t, hand.Points[ThumbTip].X, hand.Points[ThumbMCP].X)
	})

	t.Run("spread controls the fingertip gap", func(t *testing.T) {
		for _, spread := range []float64{0, 0.05, 0.31, 0.9} {
			hand := VSignLandmarks(spread)
			got := hand.NormalizedDistance(IndexTip, MiddleTip)
			assert.True(t, math.Abs(got-spread) < 1e-6, "spread %v got %v", spread, got)
		}
	})
}

func TestParseResponse(t *testing.T) {
	points := `[` + repeatPoint(NumLandmarks) + `]`

	t.Run("keeps at most max hands", func(t *testing.T) {
		line := []byte(`{"hands":[{"points":` + points + `,"handedness":"Right","score":0.9},{"points":` + points + `}]}` + "\n")
		hands, err := parseResponse(line, 1)
		require.NoError(t, err)
		require.Len(t, hands, 1)
		assert.Equal(t, "Right", hands[0].Handedness)
		assert.Equal(t, 0.5, hands[0].Points[PinkyTip].X)
	})

	t.Run("skips incomplete hands", func(t *testing.T) {
		line := []byte(`{"hands":[{"points":[{"x":1,"y":1,"z":0}]}]}`)
		hands, err := parseResponse(line, 1)
		require.NoError(t, err)
		assert.Empty(t, hands)
	})

	t.Run("service error", func(t *testing.T) {
		_, err := parseResponse([]byte(`{"error":"model not loaded"}`), 1)
		assert.ErrorContains(t, err, "model not loaded")
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := parseResponse([]byte(`{`), 1)
		assert.Error(t, err)
	})
}

func TestNewMediaPipeDetector_MissingScript(t *testing.T) {
	_, err := NewMediaPipeDetector(Config{Script: "/nonexistent/mediapipe_service.py"})
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func repeatPoint(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			s += ","
		}
		s += `{"x":0.5,"y":0.5,"z":0}`
	}
	return s
}
