// Package gesture classifies hand poses into calculator gestures and filters
// them over time.
package gesture

import (
	"strconv"

	"github.com/ayusman/ganita/internal/detector"
)

// Label is the classifier's output for a single frame.
type Label string

// Named poses. Digit poses are the strings "0" through "5".
const (
	Add      Label = "add"
	Subtract Label = "subtract"
	Multiply Label = "multiply"
	Divide   Label = "divide"
	Equals   Label = "equals"
	Clear    Label = "clear"
)

// Classification thresholds, in units of hand size.
const (
	AddSpread      = 0.3
	TightSpread    = 0.1
	DivideSpread   = 0.2
	maxFingerCount = 5
)

// Digit returns the label for a raw finger count.
func Digit(n int) Label {
	return Label(strconv.Itoa(n))
}

// IsDigit reports whether l is one of the digit labels "0".."5".
func (l Label) IsDigit() bool {
	return len(l) == 1 && l[0] >= '0' && l[0] <= '0'+maxFingerCount
}

// Features are the geometric measurements the classifier decides on.
type Features struct {
	ThumbExtended bool
	FingerCount   int
	IndexMiddle   float64
	MiddleRing    float64
}

// Extract measures a hand.
//
// The thumb test compares x coordinates and therefore only holds for one
// hand side in a mirrored frame.
func Extract(hand *detector.HandLandmarks) Features {
	var f Features

	f.ThumbExtended = hand.Points[detector.ThumbTip].X < hand.Points[detector.ThumbMCP].X
	if f.ThumbExtended {
		f.FingerCount++
	}

	for i := 1; i < len(detector.Tips); i++ {
		if hand.Points[detector.Tips[i]].Y < hand.Points[detector.Bases[i]].Y {
			f.FingerCount++
		}
	}

	f.IndexMiddle = hand.NormalizedDistance(detector.IndexTip, detector.MiddleTip)
	f.MiddleRing = hand.NormalizedDistance(detector.MiddleTip, detector.RingTip)

	return f
}

// Label maps features to a gesture. Rules are checked in order and the first
// match wins; the add and divide bands overlap on purpose.
func (f Features) Label() Label {
	switch {
	case f.FingerCount == 2 && f.IndexMiddle > AddSpread:
		return Add
	case f.FingerCount == 1 && f.ThumbExtended:
		return Subtract
	case f.FingerCount == 2 && f.IndexMiddle < TightSpread:
		return Equals
	case f.FingerCount == 3 && f.MiddleRing < TightSpread:
		return Multiply
	case f.FingerCount == 2 && !f.ThumbExtended && f.IndexMiddle > DivideSpread:
		return Divide
	case f.FingerCount == maxFingerCount:
		return Clear
	default:
		return Digit(f.FingerCount)
	}
}

// Classify returns the gesture shown by hand.
func Classify(hand *detector.HandLandmarks) Label {
	return Extract(hand).Label()
}
