package types

import "time"

// Landmark is one detected point in normalized [0,1] image coordinates.
type Landmark struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z,omitempty" yaml:"z,omitempty"`
}

// Hand is an ordered list of landmarks; index 0 is the wrist.
type Hand struct {
	Landmarks []Landmark `json:"landmarks" yaml:"landmarks"`
}

// Reference returns the hand's first landmark and whether it exists.
func (h Hand) Reference() (Landmark, bool) {
	if len(h.Landmarks) == 0 {
		return Landmark{}, false
	}
	return h.Landmarks[0], true
}

// Frame is one captured video frame.
type Frame struct {
	Seq        uint64
	Width      int
	Height     int
	Pixels     []byte
	CapturedAt time.Time
}
