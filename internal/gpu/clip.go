package gpu

// clipStack tracks the shapes of every active clip on the main target.
// The GPU state it mirrors is a single bit per pixel, so intersection
// nesting cannot be undone in place: popping clears the clip bit across
// the surface and replays the surviving entries bottom-up to rebuild the
// intersection.
type clipStack struct {
	entries []StencilGeometry
}

func (c *clipStack) push(g StencilGeometry) {
	c.entries = append(c.entries, g)
}

// pop removes the most recent clip and returns the entries that must be
// re-established, in application order. ok is false on an empty stack.
func (c *clipStack) pop() (replay []StencilGeometry, ok bool) {
	if len(c.entries) == 0 {
		return nil, false
	}
	c.entries = c.entries[:len(c.entries)-1]
	return c.entries, true
}

func (c *clipStack) active() bool {
	return len(c.entries) > 0
}

func (c *clipStack) depth() int {
	return len(c.entries)
}

func (c *clipStack) reset() {
	c.entries = c.entries[:0]
}
