// Package kernel defines the abstract geometry kernel interface.
// Implementations provide solid modeling and boolean operations behind
// this interface so synthesis never touches a backend directly.
//
// Every primitive is created centred on the origin. Cylinders, cones and
// extrusions run along Z.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Point2 is a 2D profile point (x, y) in mm.
type Point2 [2]float64

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	RoundedBox(x, y, z, round float64) Solid
	Cylinder(height, radius float64) Solid
	Sphere(radius float64) Solid
	Cone(height, bottomRadius, topRadius float64) Solid
	Torus(majorRadius, minorRadius float64) Solid

	// Profile operations. Extrude runs the polygon along Z with an optional
	// twist in degrees; Revolve spins a profile in the XY plane (x = radius)
	// around the Z axis through angle degrees.
	Extrude(profile []Point2, height, twist float64) Solid
	Revolve(profile []Point2, angle float64) Solid

	// Gear returns an involute spur gear of the given tooth count, module
	// (mm), face width, and helix twist (degrees across the face).
	Gear(teeth int, module, height, twist float64) Solid

	// Boolean operations
	Union(solids ...Solid) Solid
	Difference(a Solid, cut ...Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// Part is one named solid of a synthesized assembly.
type Part struct {
	Name  string
	Solid Solid
}

// Bounds returns the combined bounding box of a set of parts.
func Bounds(parts []Part) (min, max [3]float64) {
	for i, p := range parts {
		lo, hi := p.Solid.BoundingBox()
		if i == 0 {
			min, max = lo, hi
			continue
		}
		for a := 0; a < 3; a++ {
			if lo[a] < min[a] {
				min[a] = lo[a]
			}
			if hi[a] > max[a] {
				max[a] = hi[a]
			}
		}
	}
	return min, max
}

// Size returns the extent of a bounding box along each axis.
func Size(min, max [3]float64) [3]float64 {
	return [3]float64{max[0] - min[0], max[1] - min[1], max[2] - min[2]}
}
