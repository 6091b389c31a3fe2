package scenic

// Effect is a visual effect attached to a node. It is a sealed union:
// DropShadow and InnerShadow are the only implementations.
type Effect interface {
	isEffect()
}

// DropShadow paints a blurred, offset, tinted silhouette of the node
// behind its fills. Radius is the Gaussian blur sigma and the offset
// is in node-local units; both scale with the node's world transform
// the way geometry does. Radius 0 draws a hard-edged copy of the node
// geometry translated by the offset instead of blurring.
type DropShadow struct {
	OffsetX, OffsetY float64
	Radius           float64
	Color            RGBA
}

// InnerShadow paints a blurred shadow inside the node's shape,
// composited after its fills and masked to the shape. Units match
// DropShadow.
type InnerShadow struct {
	OffsetX, OffsetY float64
	Radius           float64
	Color            RGBA
}

func (DropShadow) isEffect()  {}
func (InnerShadow) isEffect() {}
