// Package stroke expands stroked polylines into filled outlines.
//
// Strokes render as ordinary fills: the expander thickens a flattened
// contour into closed outline loops that the stencil fill rasterizes
// under the nonzero rule. This keeps every paint type available for
// strokes without a dedicated pipeline.
//
// # Algorithm Overview
//
// Expansion builds two parallel offset polylines:
//   - Forward: offset by -width/2 perpendicular to the tangent
//   - Backward: offset by +width/2 perpendicular to the tangent
//
// An open polyline becomes one loop:
//  1. Forward offsets in travel order
//  2. End cap connecting forward to backward
//  3. Backward offsets reversed
//  4. Start cap closing the loop
//
// A closed polyline becomes two loops: the outer offset in travel
// order and the inner offset reversed, so their windings cancel over
// the hole under the nonzero rule.
//
// # Line Caps
//
//   - LineCapButt: flat edge ending exactly at the endpoint
//   - LineCapRound: semicircular cap with radius = width/2
//   - LineCapSquare: square cap extending width/2 beyond the endpoint
//
// # Line Joins
//
// Joins shape the outer side of each corner; the inner side keeps
// both segment offsets and lets the fill rule swallow the overlap:
//   - LineJoinMiter: sharp corner, falling back to bevel past the limit
//   - LineJoinRound: circular arc flattened to the tolerance
//   - LineJoinBevel: straight edge across the corner
//
// # Usage
//
//	loops := stroke.Expand(points, closed, stroke.Options{
//	    Width:      2.0,
//	    Cap:        stroke.LineCapRound,
//	    Join:       stroke.LineJoinMiter,
//	    MiterLimit: 4.0,
//	})
//
// Nearly straight corners are skipped entirely when the deviation
// stays within the flattening tolerance.
package stroke
