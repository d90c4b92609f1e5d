package model

// Point is a position in image coordinates (y grows downwards).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BBox is an axis-aligned bounding box given by two opposite corners.
type BBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Normalize returns the box with X1<=X2 and Y1<=Y2.
func (b BBox) Normalize() BBox {
	if b.X1 > b.X2 {
		b.X1, b.X2 = b.X2, b.X1
	}
	if b.Y1 > b.Y2 {
		b.Y1, b.Y2 = b.Y2, b.Y1
	}
	return b
}

// IsZero reports whether the box carries no extent information at all.
func (b BBox) IsZero() bool {
	return b == BBox{}
}

// Center returns the midpoint of the box.
func (b BBox) Center() Point {
	return Point{X: (b.X1 + b.X2) / 2, Y: (b.Y1 + b.Y2) / 2}
}

// Corners returns the four corners clockwise from the top-left one.
func (b BBox) Corners() [4]Point {
	n := b.Normalize()
	return [4]Point{
		{X: n.X1, Y: n.Y1},
		{X: n.X2, Y: n.Y1},
		{X: n.X2, Y: n.Y2},
		{X: n.X1, Y: n.Y2},
	}
}

// Contains reports whether p lies inside the box, edges included.
func (b BBox) Contains(p Point) bool {
	n := b.Normalize()
	return p.X >= n.X1 && p.X <= n.X2 && p.Y >= n.Y1 && p.Y <= n.Y2
}

// Detection is a single candidate ball produced by the perception layer.
type Detection struct {
	Center     Point   `json:"center"`
	BBox       BBox    `json:"bbox"`
	Confidence float64 `json:"confidence"`
}

// Box returns the detection's bounding box, or a degenerate box at the
// center when perception supplied none.
func (d Detection) Box() BBox {
	if d.BBox.IsZero() {
		return BBox{X1: d.Center.X, Y1: d.Center.Y, X2: d.Center.X, Y2: d.Center.Y}
	}
	return d.BBox
}

// Frame groups the detections observed at one instant of a session.
type Frame struct {
	FrameID    string      `json:"frame_id,omitempty"`
	FrameTime  float64     `json:"frame_time"`
	Detections []Detection `json:"detections"`
}
