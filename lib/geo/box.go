package geo

import "fmt"

type Box struct {
	TopLeft *Point
	Width   float64
	Height  float64
}

func NewBox(tl *Point, width, height float64) *Box {
	return &Box{
		TopLeft: tl,
		Width:   width,
		Height:  height,
	}
}

func (b *Box) Copy() *Box {
	if b == nil {
		return nil
	}
	return NewBox(b.TopLeft.Copy(), b.Width, b.Height)
}

func (b *Box) Center() *Point {
	return NewPoint(b.TopLeft.X+b.Width/2, b.TopLeft.Y+b.Height/2)
}

func (b *Box) Left() float64   { return b.TopLeft.X }
func (b *Box) Top() float64    { return b.TopLeft.Y }
func (b *Box) Right() float64  { return b.TopLeft.X + b.Width }
func (b *Box) Bottom() float64 { return b.TopLeft.Y + b.Height }

// Expand returns b grown by margin on every side.
func (b *Box) Expand(margin float64) *Box {
	return NewBox(NewPoint(b.TopLeft.X-margin, b.TopLeft.Y-margin), b.Width+2*margin, b.Height+2*margin)
}

// Union returns the smallest box containing both b and other. A nil box is ignored.
func (b *Box) Union(other *Box) *Box {
	if b == nil {
		return other.Copy()
	}
	if other == nil {
		return b.Copy()
	}
	left := b.Left()
	if other.Left() < left {
		left = other.Left()
	}
	top := b.Top()
	if other.Top() < top {
		top = other.Top()
	}
	right := b.Right()
	if other.Right() > right {
		right = other.Right()
	}
	bottom := b.Bottom()
	if other.Bottom() > bottom {
		bottom = other.Bottom()
	}
	return NewBox(NewPoint(left, top), right-left, bottom-top)
}

func (b *Box) IsFinite() bool {
	return b != nil && b.TopLeft.IsFinite() && IsFinite(b.Width, b.Height)
}

func (b *Box) ToString() string {
	if b == nil {
		return ""
	}
	return fmt.Sprintf("{TopLeft: %s, Width: %.0f, Height: %.0f}", b.TopLeft.ToString(), b.Width, b.Height)
}
