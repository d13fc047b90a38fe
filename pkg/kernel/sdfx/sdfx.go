// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/partforge/pkg/kernel"
	"github.com/deadsy/sdfx/obj"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution along the
// longest axis.
const DefaultMeshCells = 48

// minSize keeps degenerate requests away from sdfx constructors, which
// reject zero and negative sizes.
const minSize = 1e-3

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	meshCells int
}

// Option configures an SdfxKernel.
type Option func(*SdfxKernel)

// WithMeshCells sets the marching cubes resolution. Values below 8 are
// raised to 8.
func WithMeshCells(n int) Option {
	return func(k *SdfxKernel) {
		if n < 8 {
			n = 8
		}
		k.meshCells = n
	}
}

// New returns a new SdfxKernel.
func New(opts ...Option) *SdfxKernel {
	k := &SdfxKernel{meshCells: DefaultMeshCells}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// MeshCells reports the configured tessellation resolution.
func (k *SdfxKernel) MeshCells() int { return k.meshCells }

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

func clamp(v float64) float64 {
	if v < minSize || math.IsNaN(v) {
		return minSize
	}
	return v
}

// Box creates a box centred on the origin.
func (k *SdfxKernel) Box(x, y, z float64) kernel.Solid {
	return k.RoundedBox(x, y, z, 0)
}

// RoundedBox creates a centred box whose edges are rounded by round. The
// radius is limited to just under half the smallest side.
func (k *SdfxKernel) RoundedBox(x, y, z, round float64) kernel.Solid {
	x, y, z = clamp(x), clamp(y), clamp(z)
	round = math.Max(0, math.Min(round, 0.49*math.Min(x, math.Min(y, z))))
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, round)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	return wrap(s)
}

// Cylinder creates a Z-axis cylinder centred on the origin.
func (k *SdfxKernel) Cylinder(height, radius float64) kernel.Solid {
	s, err := sdf.Cylinder3D(clamp(height), clamp(radius), 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cylinder3D: %v", err))
	}
	return wrap(s)
}

// Sphere creates a sphere centred on the origin.
func (k *SdfxKernel) Sphere(radius float64) kernel.Solid {
	s, err := sdf.Sphere3D(clamp(radius))
	if err != nil {
		panic(fmt.Sprintf("sdfx.Sphere3D: %v", err))
	}
	return wrap(s)
}

// Cone creates a truncated cone along Z, bottomRadius at -height/2.
func (k *SdfxKernel) Cone(height, bottomRadius, topRadius float64) kernel.Solid {
	s, err := sdf.Cone3D(clamp(height), math.Max(0, bottomRadius), math.Max(0, topRadius), 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cone3D: %v", err))
	}
	return wrap(s)
}

// Torus creates a torus in the XY plane by revolving a circle.
func (k *SdfxKernel) Torus(majorRadius, minorRadius float64) kernel.Solid {
	minorRadius = clamp(minorRadius)
	majorRadius = math.Max(majorRadius, minorRadius+minSize)
	c, err := sdf.Circle2D(minorRadius)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Circle2D: %v", err))
	}
	c = sdf.Transform2D(c, sdf.Translate2d(v2.Vec{X: majorRadius, Y: 0}))
	s, err := sdf.Revolve3D(c)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Revolve3D: %v", err))
	}
	return wrap(s)
}

func polygon(profile []kernel.Point2) sdf.SDF2 {
	pts := make([]v2.Vec, len(profile))
	for i, p := range profile {
		pts[i] = v2.Vec{X: p[0], Y: p[1]}
	}
	s, err := sdf.Polygon2D(pts)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Polygon2D: %v", err))
	}
	return s
}

// Extrude extrudes a closed polygon along Z, centred on the origin. A
// non-zero twist (degrees) produces a helical extrusion.
func (k *SdfxKernel) Extrude(profile []kernel.Point2, height, twist float64) kernel.Solid {
	p := polygon(profile)
	if twist != 0 {
		return wrap(sdf.TwistExtrude3D(p, clamp(height), sdf.DtoR(twist)))
	}
	return wrap(sdf.Extrude3D(p, clamp(height)))
}

// Revolve spins a profile around the Z axis. The profile's x coordinate is
// the radius and must be non-negative.
func (k *SdfxKernel) Revolve(profile []kernel.Point2, angle float64) kernel.Solid {
	p := polygon(profile)
	var (
		s   sdf.SDF3
		err error
	)
	if angle <= 0 || angle >= 360 {
		s, err = sdf.Revolve3D(p)
	} else {
		s, err = sdf.RevolveTheta3D(p, sdf.DtoR(angle))
	}
	if err != nil {
		panic(fmt.Sprintf("sdfx.Revolve3D: %v", err))
	}
	return wrap(s)
}

// Gear builds an involute spur gear (20 degree pressure angle) extruded to
// height. A non-zero twist makes it helical.
func (k *SdfxKernel) Gear(teeth int, module, height, twist float64) kernel.Solid {
	if teeth < 6 {
		teeth = 6
	}
	profile, err := obj.InvoluteGear(&obj.InvoluteGearParms{
		NumberTeeth:   teeth,
		Module:        clamp(module),
		PressureAngle: sdf.DtoR(20),
		Facets:        7,
	})
	if err != nil {
		panic(fmt.Sprintf("sdfx.InvoluteGear: %v", err))
	}
	if twist != 0 {
		return wrap(sdf.TwistExtrude3D(profile, clamp(height), sdf.DtoR(twist)))
	}
	return wrap(sdf.Extrude3D(profile, clamp(height)))
}

// Union returns the union of the given solids.
func (k *SdfxKernel) Union(solids ...kernel.Solid) kernel.Solid {
	if len(solids) == 1 {
		return solids[0]
	}
	ss := make([]sdf.SDF3, len(solids))
	for i, s := range solids {
		ss[i] = unwrap(s)
	}
	return wrap(sdf.Union3D(ss...))
}

// Difference returns a minus every cut.
func (k *SdfxKernel) Difference(a kernel.Solid, cut ...kernel.Solid) kernel.Solid {
	if len(cut) == 0 {
		return a
	}
	return wrap(sdf.Difference3D(unwrap(a), unwrap(k.Union(cut...))))
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.RotateZ(sdf.DtoR(z)).Mul(sdf.RotateY(sdf.DtoR(y))).Mul(sdf.RotateX(sdf.DtoR(x)))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	if s == nil {
		return nil, fmt.Errorf("sdfx: nil solid")
	}
	renderer := render.NewMarchingCubesUniform(k.meshCells)
	triangles := render.ToTriangles(unwrap(s), renderer)

	numVerts := len(triangles) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)
		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
