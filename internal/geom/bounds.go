package geom

// Bounds is an axis-aligned rectangle given by its top-left and
// bottom-right corners.
type Bounds struct {
	TopLeft     Position `json:"topLeft"`
	BottomRight Position `json:"bottomRight"`
}

func NewBounds(topLeft, bottomRight Position) Bounds {
	return Bounds{TopLeft: topLeft, BottomRight: bottomRight}
}

// FromOrigin spans (0,0) to (width,height).
func FromOrigin(width, height float64) Bounds {
	return Bounds{BottomRight: Position{X: width, Y: height}}
}

// Contains is inclusive on every edge.
func (b Bounds) Contains(p Position) bool {
	return p.X >= b.TopLeft.X && p.Y >= b.TopLeft.Y &&
		p.X <= b.BottomRight.X && p.Y <= b.BottomRight.Y
}
