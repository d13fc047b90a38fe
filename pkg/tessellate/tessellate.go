// Package tessellate walks a synthesized assembly tree and produces triangle
// meshes using a geometry kernel. One mesh is produced per leaf part.
package tessellate

import (
	"fmt"

	"github.com/chazu/partforge/pkg/kernel"
)

// Node is one element of an assembly tree. A node with a Solid is a leaf
// part; any other node groups its children. Translation and Rotation (Euler
// degrees) apply to the node and everything below it.
type Node struct {
	Name        string
	Solid       kernel.Solid
	Translation [3]float64
	Rotation    [3]float64
	Children    []*Node
}

// Leaf returns a part node.
func Leaf(name string, s kernel.Solid) *Node {
	return &Node{Name: name, Solid: s}
}

// Group returns a node holding children.
func Group(name string, children ...*Node) *Node {
	return &Node{Name: name, Children: children}
}

// Move sets the node's translation and returns it.
func (n *Node) Move(x, y, z float64) *Node {
	n.Translation = [3]float64{x, y, z}
	return n
}

// Turn sets the node's rotation and returns it.
func (n *Node) Turn(x, y, z float64) *Node {
	n.Rotation = [3]float64{x, y, z}
	return n
}

// PartCount returns the number of leaf parts under n.
func (n *Node) PartCount() int {
	if n == nil {
		return 0
	}
	if n.Solid != nil {
		return 1
	}
	count := 0
	for _, c := range n.Children {
		count += c.PartCount()
	}
	return count
}

// transformStack accumulates spatial transforms during traversal.
type transformStack struct {
	translations [][3]float64
	rotations    [][3]float64
}

func newTransformStack() *transformStack {
	return &transformStack{}
}

func (ts *transformStack) push(n *Node) {
	ts.translations = append(ts.translations, n.Translation)
	ts.rotations = append(ts.rotations, n.Rotation)
}

func (ts *transformStack) pop() {
	if len(ts.translations) > 0 {
		ts.translations = ts.translations[:len(ts.translations)-1]
	}
	if len(ts.rotations) > 0 {
		ts.rotations = ts.rotations[:len(ts.rotations)-1]
	}
}

func sum(vs [][3]float64) [3]float64 {
	var out [3]float64
	for _, v := range vs {
		out[0] += v[0]
		out[1] += v[1]
		out[2] += v[2]
	}
	return out
}

func nonZero(v [3]float64) bool {
	return v[0] != 0 || v[1] != 0 || v[2] != 0
}

// Place walks the tree and returns every leaf as a part with its accumulated
// transform applied: rotation first, then translation.
func Place(root *Node, k kernel.Kernel) []kernel.Part {
	if root == nil {
		return nil
	}
	var parts []kernel.Part
	walk(root, newTransformStack(), func(n *Node, ts *transformStack) {
		solid := n.Solid
		if rot := sum(ts.rotations); nonZero(rot) {
			solid = k.Rotate(solid, rot[0], rot[1], rot[2])
		}
		if tr := sum(ts.translations); nonZero(tr) {
			solid = k.Translate(solid, tr[0], tr[1], tr[2])
		}
		name := n.Name
		if name == "" {
			name = fmt.Sprintf("part-%d", len(parts)+1)
		}
		parts = append(parts, kernel.Part{Name: name, Solid: solid})
	})
	return parts
}

func walk(n *Node, ts *transformStack, visit func(*Node, *transformStack)) {
	ts.push(n)
	defer ts.pop()
	if n.Solid != nil {
		visit(n, ts)
		return
	}
	for _, child := range n.Children {
		if child != nil {
			walk(child, ts, visit)
		}
	}
}

// Tessellate places every part of the tree and produces one triangle mesh per
// part using the provided geometry kernel. The tree is never mutated.
func Tessellate(root *Node, k kernel.Kernel) ([]*kernel.Mesh, error) {
	return Meshes(Place(root, k), k)
}

// Meshes converts already placed parts to meshes, naming each mesh after its
// part.
func Meshes(parts []kernel.Part, k kernel.Kernel) ([]*kernel.Mesh, error) {
	meshes := make([]*kernel.Mesh, 0, len(parts))
	for _, p := range parts {
		mesh, err := k.ToMesh(p.Solid)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for part %s: %w", p.Name, err)
		}
		mesh.PartName = p.Name
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}
