package geo

import (
	"math"
	"testing"
)

func TestPointMove(t *testing.T) {
	p := &Point{10, 20}

	if got := p.Move(Right, 30); !got.Equals(NewPoint(40, 20)) {
		t.Fatalf("Expected (40, 20), got %v", got.ToString())
	}
	if got := p.Move(Up, 5); !got.Equals(NewPoint(10, 15)) {
		t.Fatalf("Expected (10, 15), got %v", got.ToString())
	}
	if got := p.Move(NoDirection, 5); !got.Equals(p) {
		t.Fatalf("Expected no movement, got %v", got.ToString())
	}
}

func TestAxisAligned(t *testing.T) {
	a := &Point{0, 0}

	if !a.AxisAligned(&Point{0, 10}) {
		t.Fatal("Expected vertical pair to be axis aligned")
	}
	if !a.AxisAligned(&Point{-10, 0}) {
		t.Fatal("Expected horizontal pair to be axis aligned")
	}
	if a.AxisAligned(&Point{10, 10}) {
		t.Fatal("Expected diagonal pair not to be axis aligned")
	}
	if a.AxisAligned(&Point{0, 0}) {
		t.Fatal("Expected identical points not to be axis aligned")
	}
}

func TestIsFinite(t *testing.T) {
	if !(&Point{1, 2}).IsFinite() {
		t.Fatal("Expected finite point")
	}
	if (&Point{math.NaN(), 2}).IsFinite() {
		t.Fatal("Expected NaN point to not be finite")
	}
	var p *Point
	if p.IsFinite() {
		t.Fatal("Expected nil point to not be finite")
	}
}
