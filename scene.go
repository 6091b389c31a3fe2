package scenic

// Scene is one frame's worth of content: a canvas size in logical
// pixels and the root nodes painted onto it in order. The tree must
// stay unmodified for the duration of a Render call; scenic never
// mutates it.
type Scene struct {
	Width, Height float64
	Roots         []Node
}

// NewScene creates a scene with the given canvas size.
func NewScene(width, height float64, roots ...Node) *Scene {
	return &Scene{Width: width, Height: height, Roots: roots}
}

// Walk visits every node in depth-first pre-order, the same order
// rendering paints them. The visitor returns false to skip a node's
// children (the node itself has already been visited).
func (s *Scene) Walk(visit func(n Node) bool) {
	for _, root := range s.Roots {
		walkNode(root, visit)
	}
}

func walkNode(n Node, visit func(Node) bool) {
	if !visit(n) {
		return
	}
	for _, child := range nodeChildren(n) {
		walkNode(child, visit)
	}
}

func nodeChildren(n Node) []Node {
	switch v := n.(type) {
	case *Group:
		return v.Children
	case *Frame:
		return v.Children
	}
	return nil
}
