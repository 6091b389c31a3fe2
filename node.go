package scenic

import "github.com/gogpu/scenic/path"

// Node is one element of a scene tree. It is a sealed union: Group,
// Frame, RectNode, EllipseNode, PathNode, TextNode and ImageNode are
// the only implementations. Parents exclusively own their children;
// the tree has no cycles and no back references.
type Node interface {
	// Base exposes the attributes shared by every node kind.
	Base() *NodeBase

	isNode()
}

// NodeBase holds the attributes common to all node kinds. The zero
// value is not useful: construct nodes through the New* helpers,
// which set Visible, unit opacity and an identity transform.
type NodeBase struct {
	// Name labels the node in logs. Optional.
	Name string

	// Visible false skips the node and its whole subtree.
	Visible bool

	// Opacity in [0, 1], composed multiplicatively down the tree.
	Opacity float64

	// Transform positions the node in its parent's coordinate
	// space. World transforms compose root-to-leaf.
	Transform Matrix

	// Fills are painted bottom-to-top, each masked to the node's
	// shape.
	Fills []Paint

	// Stroke, when set, is painted after the fills from thickened
	// outline geometry.
	Stroke *Stroke

	// Effects apply in list order. Drop shadows paint behind the
	// fills, inner shadows on top of them.
	Effects []Effect

	// ClipsContent gates children to the node's shape: an explicit
	// ClipShape when set, otherwise the node's intrinsic geometry.
	ClipsContent bool

	// ClipShape overrides the clip geometry, in node-local
	// coordinates.
	ClipShape []path.Contour
}

func newBase(name string) NodeBase {
	return NodeBase{
		Name:      name,
		Visible:   true,
		Opacity:   1,
		Transform: Identity(),
	}
}

// Group is a pure container: no geometry of its own, children share
// its transform and opacity.
type Group struct {
	NodeBase
	Children []Node
}

// Frame is a container with an intrinsic rectangle. Its fills paint
// that rectangle and ClipsContent clips children to it.
type Frame struct {
	NodeBase
	W, H         float64
	CornerRadius float64
	Children     []Node
}

// RectNode is a rectangle of size W×H anchored at the local origin,
// optionally with rounded corners.
type RectNode struct {
	NodeBase
	W, H         float64
	CornerRadius float64
}

// EllipseNode is an ellipse inscribed in the W×H box anchored at the
// local origin.
type EllipseNode struct {
	NodeBase
	W, H float64
}

// PathNode is arbitrary vector geometry. Contours may be supplied
// directly or decoded on demand from the wire-format Data blob;
// non-nil Contours take precedence.
type PathNode struct {
	NodeBase
	Data     []byte
	Contours []path.Contour
	Rule     path.FillRule
}

// TextNode carries pre-extracted glyph outline contours, positioned
// in node-local coordinates. The glyph package produces them; glyphs
// fill under the nonzero rule.
type TextNode struct {
	NodeBase
	Contours []path.Contour
}

// ImageNode is a W×H rectangle painted with an image. It is sugar
// for a RectNode with a single ImagePaint fill.
type ImageNode struct {
	NodeBase
	W, H float64
	Ref  string
	Data []byte
	Mime string
	Mode ScaleMode
}

func (*Group) isNode()       {}
func (*Frame) isNode()       {}
func (*RectNode) isNode()    {}
func (*EllipseNode) isNode() {}
func (*PathNode) isNode()    {}
func (*TextNode) isNode()    {}
func (*ImageNode) isNode()   {}

func (n *Group) Base() *NodeBase       { return &n.NodeBase }
func (n *Frame) Base() *NodeBase       { return &n.NodeBase }
func (n *RectNode) Base() *NodeBase    { return &n.NodeBase }
func (n *EllipseNode) Base() *NodeBase { return &n.NodeBase }
func (n *PathNode) Base() *NodeBase    { return &n.NodeBase }
func (n *TextNode) Base() *NodeBase    { return &n.NodeBase }
func (n *ImageNode) Base() *NodeBase   { return &n.NodeBase }

// NewGroup creates a visible group with the given children.
func NewGroup(name string, children ...Node) *Group {
	return &Group{NodeBase: newBase(name), Children: children}
}

// NewFrame creates a visible frame of the given size.
func NewFrame(name string, w, h float64, children ...Node) *Frame {
	return &Frame{NodeBase: newBase(name), W: w, H: h, Children: children}
}

// NewRect creates a visible rectangle node.
func NewRect(name string, w, h float64) *RectNode {
	return &RectNode{NodeBase: newBase(name), W: w, H: h}
}

// NewEllipse creates a visible ellipse node.
func NewEllipse(name string, w, h float64) *EllipseNode {
	return &EllipseNode{NodeBase: newBase(name), W: w, H: h}
}

// NewPath creates a visible path node from a wire-format geometry
// blob. The blob is decoded during rendering.
func NewPath(name string, data []byte, rule path.FillRule) *PathNode {
	return &PathNode{NodeBase: newBase(name), Data: data, Rule: rule}
}

// NewPathContours creates a visible path node from decoded contours.
func NewPathContours(name string, contours []path.Contour, rule path.FillRule) *PathNode {
	return &PathNode{NodeBase: newBase(name), Contours: contours, Rule: rule}
}

// NewText creates a visible text node from glyph outline contours.
func NewText(name string, contours []path.Contour) *TextNode {
	return &TextNode{NodeBase: newBase(name), Contours: contours}
}

// NewImage creates a visible image node. ref keys the texture cache;
// data and mime carry the encoded image for PrepareScene to upload.
func NewImage(name string, w, h float64, ref string, data []byte, mime string) *ImageNode {
	return &ImageNode{NodeBase: newBase(name), W: w, H: h, Ref: ref, Data: data, Mime: mime, Mode: ScaleFill}
}
