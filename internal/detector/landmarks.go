// Package detector provides hand detection interfaces and landmark types.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Fingertips and their base joints, thumb first.
var (
	Tips  = [5]int{ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip}
	Bases = [5]int{ThumbMCP, IndexMCP, MiddleMCP, RingMCP, PinkyMCP}
)

// Connections lists the landmark pairs that form the hand skeleton.
var Connections = [][2]int{
	{Wrist, ThumbCMC}, {ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
	{Wrist, IndexMCP}, {IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
	{IndexMCP, MiddleMCP}, {MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip},
	{MiddleMCP, RingMCP}, {RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
	{RingMCP, PinkyMCP}, {Wrist, PinkyMCP}, {PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
}

// Point3D is a landmark in normalized frame coordinates.
// X and Y are in [0,1]; Z is relative depth and unused by the classifier.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Distance2D is the Euclidean distance between two points in the image plane.
func Distance2D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// HandSize is the wrist to index base distance used as the scale reference.
func (h *HandLandmarks) HandSize() float64 {
	return Distance2D(h.Points[Wrist], h.Points[IndexMCP])
}

// NormalizedDistance returns the distance between landmarks i and j divided
// by the hand size. A degenerate hand (size 0) yields 0.
func (h *HandLandmarks) NormalizedDistance(i, j int) float64 {
	size := h.HandSize()
	if size <= 0 {
		return 0
	}
	return Distance2D(h.Points[i], h.Points[j]) / size
}

// Pixel maps landmark i onto a frame of the given size.
func (h *HandLandmarks) Pixel(i, width, height int) (int, int) {
	p := h.Points[i]
	return int(p.X * float64(width)), int(p.Y * float64(height))
}
