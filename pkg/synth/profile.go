package synth

import (
	"math"

	"github.com/chazu/partforge/pkg/kernel"
)

// pt is shorthand for profile literals.
type pt = kernel.Point2

func circleArea(d float64) float64 {
	if d <= 0 {
		return 0
	}
	return math.Pi * d * d / 4
}

// hexArea is the area of a regular hexagon measured across flats.
func hexArea(acrossFlats float64) float64 {
	return math.Sqrt(3) / 2 * acrossFlats * acrossFlats
}

// regularPolygonArea is the area of a regular n-gon with circumradius r.
func regularPolygonArea(n int, r float64) float64 {
	return float64(n) / 2 * r * r * math.Sin(2*math.Pi/float64(n))
}

// roundedBoxVolume is the volume of an x*y*z box whose edges and corners are
// rounded by r: the Minkowski sum of the inner core box and a sphere.
func roundedBoxVolume(x, y, z, r float64) float64 {
	if r <= 0 {
		return x * y * z
	}
	a, b, c := x-2*r, y-2*r, z-2*r
	return a*b*c + 2*r*(a*b+b*c+c*a) + math.Pi*r*r*(a+b+c) + 4.0/3.0*math.Pi*r*r*r
}

// regularPolygon returns the vertices of an n-gon of circumradius r. The
// first vertex sits at angle offset degrees.
func regularPolygon(n int, r, offset float64) []kernel.Point2 {
	pts := make([]kernel.Point2, n)
	for i := range pts {
		a := (offset + 360*float64(i)/float64(n)) * math.Pi / 180
		pts[i] = kernel.Point2{r * math.Cos(a), r * math.Sin(a)}
	}
	return pts
}

// hexagon returns a hexagon with two flats parallel to the X axis.
func hexagon(acrossFlats float64) []kernel.Point2 {
	return regularPolygon(6, acrossFlats/math.Sqrt(3), 0)
}

// polygonArea is the signed shoelace area.
func polygonArea(pts []kernel.Point2) float64 {
	var a float64
	for i := range pts {
		p, q := pts[i], pts[(i+1)%len(pts)]
		a += p[0]*q[1] - q[0]*p[1]
	}
	return a / 2
}

// revolvedVolume is the volume swept by revolving a closed profile a full
// turn about the Y axis (Pappus): 2*pi*A*xbar.
func revolvedVolume(pts []kernel.Point2) float64 {
	var s float64
	for i := range pts {
		p, q := pts[i], pts[(i+1)%len(pts)]
		s += (p[0] + q[0]) * (p[0]*q[1] - q[0]*p[1])
	}
	return math.Abs(s) * math.Pi / 3
}

// ringInnerDiameter converts a US ring size to an inner diameter in mm.
func ringInnerDiameter(size float64) float64 {
	return 11.63 + 0.8128*size
}

func clampMin(v, min float64) float64 {
	if v < min {
		return min
	}
	return v
}
