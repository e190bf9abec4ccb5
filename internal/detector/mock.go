package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu       sync.Mutex
	hands    []HandLandmarks
	sequence [][]HandLandmarks
	err      error
	calls    int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by every Detect call.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
	m.sequence = nil
}

// SetSequence scripts one result per Detect call. Once the script is
// exhausted Detect returns no hands.
func (m *MockDetector) SetSequence(frames [][]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = frames
	m.hands = nil
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.sequence != nil {
		if len(m.sequence) == 0 {
			return nil, nil
		}
		next := m.sequence[0]
		m.sequence = m.sequence[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Pose describes a synthetic hand for fixtures. IndexMiddle and MiddleRing
// are the fingertip gaps in units of hand size.
type Pose struct {
	Thumb, Index, Middle, Ring, Pinky bool
	IndexMiddle                       float64
	MiddleRing                        float64
}

// Fixture geometry: wrist to index base is exactly fixtureHandSize.
const (
	fixtureHandSize = 0.2
	extendedTipY    = 0.35
	foldedTipY      = 0.65
	middleTipX      = 0.45
)

// PoseLandmarks builds landmarks for a mirrored right hand in the given pose.
func PoseLandmarks(p Pose) HandLandmarks {
	lm := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	tipY := func(extended bool) float64 {
		if extended {
			return extendedTipY
		}
		return foldedTipY
	}

	lm.Points[Wrist] = Point3D{X: 0.5, Y: 0.8}

	lm.Points[ThumbCMC] = Point3D{X: 0.45, Y: 0.76}
	lm.Points[ThumbMCP] = Point3D{X: 0.40, Y: 0.72}
	if p.Thumb {
		lm.Points[ThumbIP] = Point3D{X: 0.35, Y: 0.68}
		lm.Points[ThumbTip] = Point3D{X: 0.30, Y: 0.65}
	} else {
		lm.Points[ThumbIP] = Point3D{X: 0.44, Y: 0.68}
		lm.Points[ThumbTip] = Point3D{X: 0.46, Y: 0.70}
	}

	fingers := []struct {
		mcp, pip, dip, tip int
		baseX, tipX        float64
		extended           bool
	}{
		{IndexMCP, IndexPIP, IndexDIP, IndexTip, 0.5, middleTipX + p.IndexMiddle*fixtureHandSize, p.Index},
		{MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip, 0.45, middleTipX, p.Middle},
		{RingMCP, RingPIP, RingDIP, RingTip, 0.40, middleTipX - p.MiddleRing*fixtureHandSize, p.Ring},
		{PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip, 0.35, 0.20, p.Pinky},
	}

	for _, f := range fingers {
		baseY := 0.6
		y := tipY(f.extended)
		lm.Points[f.mcp] = Point3D{X: f.baseX, Y: baseY}
		lm.Points[f.pip] = Point3D{X: (2*f.baseX + f.tipX) / 3, Y: (2*baseY + y) / 3}
		lm.Points[f.dip] = Point3D{X: (f.baseX + 2*f.tipX) / 3, Y: (baseY + 2*y) / 3}
		lm.Points[f.tip] = Point3D{X: f.tipX, Y: y}
	}

	return lm
}

// FistLandmarks returns a closed hand (no fingers extended).
func FistLandmarks() HandLandmarks {
	return PoseLandmarks(Pose{IndexMiddle: 0.5, MiddleRing: 0.5})
}

// PointLandmarks returns a hand with only the index finger raised.
func PointLandmarks() HandLandmarks {
	return PoseLandmarks(Pose{Index: true, IndexMiddle: 0.5, MiddleRing: 0.5})
}

// VSignLandmarks returns index and middle raised with the given fingertip gap.
func VSignLandmarks(spread float64) HandLandmarks {
	return PoseLandmarks(Pose{Index: true, Middle: true, IndexMiddle: spread, MiddleRing: 0.5})
}

// ThumbOnlyLandmarks returns a hand with only the thumb extended.
func ThumbOnlyLandmarks() HandLandmarks {
	return PoseLandmarks(Pose{Thumb: true, IndexMiddle: 0.5, MiddleRing: 0.5})
}

// ThreeFingerLandmarks returns index, middle and ring raised with the given
// middle-ring fingertip gap.
func ThreeFingerLandmarks(middleRing float64) HandLandmarks {
	return PoseLandmarks(Pose{Index: true, Middle: true, Ring: true, IndexMiddle: 0.5, MiddleRing: middleRing})
}

// FourFingerLandmarks returns all fingers raised except the thumb.
func FourFingerLandmarks() HandLandmarks {
	return PoseLandmarks(Pose{Index: true, Middle: true, Ring: true, Pinky: true, IndexMiddle: 0.5, MiddleRing: 0.5})
}

// OpenPalmLandmarks returns an open hand with all five fingers extended.
func OpenPalmLandmarks() HandLandmarks {
	return PoseLandmarks(Pose{Thumb: true, Index: true, Middle: true, Ring: true, Pinky: true, IndexMiddle: 0.5, MiddleRing: 0.5})
}
