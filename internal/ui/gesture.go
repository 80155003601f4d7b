package ui

import "time"

// Gesture is how a button was pressed.
type Gesture int

const (
	// Click is a short press.
	Click Gesture = iota
	// LongPress is a press held at least the long-press threshold.
	LongPress
	// ShiftClick is any press with shift held.
	ShiftClick
)

func (g Gesture) String() string {
	switch g {
	case Click:
		return "click"
	case LongPress:
		return "long-press"
	case ShiftClick:
		return "shift-click"
	default:
		return "unknown"
	}
}

// ClassifyGesture maps a press to a gesture. Shift wins over duration.
func ClassifyGesture(held time.Duration, shift bool, threshold time.Duration) Gesture {
	switch {
	case shift:
		return ShiftClick
	case held >= threshold:
		return LongPress
	default:
		return Click
	}
}
