// Package overlay draws the calculator display, the classified gesture, the
// gesture legend, recent history and the hand skeleton onto camera frames.
package overlay

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/ganita/internal/calculator"
	"github.com/ayusman/ganita/internal/detector"
	"github.com/ayusman/ganita/internal/gesture"
)

// Legend is the static guide printed along the bottom of the frame.
const Legend = "1-5: Numbers | V:+ | Thumb:- | 3Tight:* | L:/ | 5Open:C | 2Tight:="

// HistoryLines is how many history entries are drawn.
const HistoryLines = 3

const (
	panelMargin = 20
	panelBottom = 100
)

var (
	panelColor    = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	displayColor  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	gestureColor  = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	legendColor   = color.RGBA{R: 100, G: 255, B: 200, A: 255}
	historyColor  = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	boneColor     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	landmarkColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

// Scene is everything drawn on one frame.
type Scene struct {
	State   calculator.State
	Gesture gesture.Label
	Hand    *detector.HandLandmarks
}

// Text is one line of text placed on the frame.
type Text struct {
	Content   string
	Origin    image.Point
	Scale     float64
	Color     color.RGBA
	Thickness int
}

// Layout is the resolved placement of every overlay element for a frame size.
type Layout struct {
	Panel image.Rectangle
	Texts []Text
}

// Arrange places the scene on a width x height frame.
func Arrange(s Scene, width, height int) Layout {
	l := Layout{
		Panel: image.Rect(panelMargin, panelMargin, width-panelMargin, panelBottom),
	}

	l.Texts = append(l.Texts, Text{
		Content: s.State.Display(), Origin: image.Pt(30, 70),
		Scale: 1.2, Color: displayColor, Thickness: 2,
	})

	if s.Gesture != "" {
		l.Texts = append(l.Texts, Text{
			Content: "Gesture: " + string(s.Gesture), Origin: image.Pt(30, 130),
			Scale: 0.8, Color: gestureColor, Thickness: 2,
		})
	}

	l.Texts = append(l.Texts, Text{
		Content: Legend, Origin: image.Pt(20, height-20),
		Scale: 0.5, Color: legendColor, Thickness: 1,
	})

	for i, entry := range s.State.RecentHistory(HistoryLines) {
		l.Texts = append(l.Texts, Text{
			Content: entry, Origin: image.Pt(30, 160+i*30),
			Scale: 0.6, Color: historyColor, Thickness: 1,
		})
	}

	return l
}

// Bones returns the skeleton segments of hand in pixel coordinates.
func Bones(hand *detector.HandLandmarks, width, height int) [][2]image.Point {
	if hand == nil {
		return nil
	}
	bones := make([][2]image.Point, 0, len(detector.Connections))
	for _, c := range detector.Connections {
		bones = append(bones, [2]image.Point{
			pixel(hand, c[0], width, height),
			pixel(hand, c[1], width, height),
		})
	}
	return bones
}

func pixel(hand *detector.HandLandmarks, i, width, height int) image.Point {
	x, y := hand.Pixel(i, width, height)
	return image.Pt(x, y)
}

// Draw renders s onto frame in place.
func Draw(frame *gocv.Mat, s Scene) {
	width, height := frame.Cols(), frame.Rows()
	l := Arrange(s, width, height)

	gocv.Rectangle(frame, l.Panel, panelColor, -1)

	for _, bone := range Bones(s.Hand, width, height) {
		gocv.Line(frame, bone[0], bone[1], boneColor, 2)
	}
	if s.Hand != nil {
		for i := range s.Hand.Points {
			gocv.Circle(frame, pixel(s.Hand, i, width, height), 4, landmarkColor, -1)
		}
	}

	for _, t := range l.Texts {
		gocv.PutText(frame, t.Content, t.Origin, gocv.FontHersheySimplex, t.Scale, t.Color, t.Thickness)
	}
}
