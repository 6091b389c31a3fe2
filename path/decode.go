package path

import (
	"encoding/binary"
	"math"
)

// Wire opcodes. Each opcode is followed by its operand count of little-endian
// float32 values.
const (
	opPadding     = 0x00 // trailing zero padding, no operands
	opMoveTo      = 0x01 // x, y
	opLineTo      = 0x02 // x, y
	opSmoothCubic = 0x03 // cp2x, cp2y, x, y (cp1 derived, see decode)
	opCubicTo     = 0x04 // cp1x, cp1y, cp2x, cp2y, x, y
	opQuadTo      = 0x05 // cpx, cpy, x, y
	opClose       = 0x06 // no operands
	opCubicLegacy = 0x13 // same operands as opCubicTo, emitted by old writers
)

// maxCommands bounds a single decode. Corrupt input cannot loop or blow up
// memory: decoding always terminates within this many commands.
const maxCommands = 100000

// resyncWindow is how many bytes past an unknown opcode the decoder scans
// for a recognized opcode before giving up on the rest of the buffer.
const resyncWindow = 30

// decodeState is the decoder's explicit state: reading commands at a known
// position, or scanning forward to resynchronize after an unknown opcode.
type decodeState uint8

const (
	stateReading decodeState = iota
	stateScanning
)

// Decode turns a binary geometry blob into a command sequence.
//
// This is a best-effort decoder: it never fails. Unknown opcodes trigger a
// bounded forward scan for the next recognized opcode; truncated operands and
// zero padding end the sequence; a hard command cap guarantees termination on
// adversarial input. The result is whatever prefix of the blob decoded
// cleanly.
func Decode(data []byte) []Command {
	var (
		cmds  []Command
		state = stateReading
		pos   = 0

		// Smooth-cubic reflection state: the endpoint and second control
		// point of the most recent command, and what kind it was.
		endX, endY float64
		cp2X, cp2Y float64
		prevCubic  bool
		prevOnto   bool // previous command was MoveTo or LineTo
	)

	for pos < len(data) && len(cmds) < maxCommands {
		if state == stateScanning {
			next := scanOpcode(data, pos)
			if next < 0 {
				return cmds
			}
			pos = next
			state = stateReading
			continue
		}

		op := data[pos]
		switch op {
		case opPadding:
			if allZero(data[pos:]) {
				return cmds
			}
			// A stray zero byte mid-stream is as unknown as any other
			// unrecognized opcode.
			state = stateScanning

		case opMoveTo, opLineTo:
			ops, ok := readFloats(data, pos+1, 2)
			if !ok {
				return cmds
			}
			if op == opMoveTo {
				cmds = append(cmds, MoveTo{X: ops[0], Y: ops[1]})
			} else {
				cmds = append(cmds, LineTo{X: ops[0], Y: ops[1]})
			}
			endX, endY = ops[0], ops[1]
			prevCubic, prevOnto = false, true
			pos += 1 + 2*4

		case opSmoothCubic:
			ops, ok := readFloats(data, pos+1, 4)
			if !ok {
				return cmds
			}
			c2x, c2y, x, y := ops[0], ops[1], ops[2], ops[3]
			var c1x, c1y float64
			switch {
			case prevCubic:
				// Reflect the previous cubic's second control point
				// across its endpoint.
				c1x, c1y = 2*endX-cp2X, 2*endY-cp2Y
			case prevOnto:
				c1x, c1y = endX, endY
			default:
				c1x, c1y = c2x, c2y
			}
			cmds = append(cmds, CubicTo{C1X: c1x, C1Y: c1y, C2X: c2x, C2Y: c2y, X: x, Y: y})
			endX, endY = x, y
			cp2X, cp2Y = c2x, c2y
			prevCubic, prevOnto = true, false
			pos += 1 + 4*4

		case opCubicTo, opCubicLegacy:
			ops, ok := readFloats(data, pos+1, 6)
			if !ok {
				return cmds
			}
			cmds = append(cmds, CubicTo{
				C1X: ops[0], C1Y: ops[1],
				C2X: ops[2], C2Y: ops[3],
				X: ops[4], Y: ops[5],
			})
			endX, endY = ops[4], ops[5]
			cp2X, cp2Y = ops[2], ops[3]
			prevCubic, prevOnto = true, false
			pos += 1 + 6*4

		case opQuadTo:
			ops, ok := readFloats(data, pos+1, 4)
			if !ok {
				return cmds
			}
			cmds = append(cmds, QuadTo{CX: ops[0], CY: ops[1], X: ops[2], Y: ops[3]})
			endX, endY = ops[2], ops[3]
			prevCubic, prevOnto = false, false
			pos += 1 + 4*4

		case opClose:
			cmds = append(cmds, Close{})
			prevCubic, prevOnto = false, false
			pos++

		default:
			state = stateScanning
		}
	}
	return cmds
}

// DecodeContours decodes a blob and splits the result into contours.
func DecodeContours(data []byte) []Contour {
	return SplitContours(Decode(data))
}

// scanOpcode returns the position of the first recognized opcode within
// resyncWindow bytes after the unknown byte at pos, or -1 if none is found.
func scanOpcode(data []byte, pos int) int {
	limit := pos + 1 + resyncWindow
	if limit > len(data) {
		limit = len(data)
	}
	for i := pos + 1; i < limit; i++ {
		if isOpcode(data[i]) {
			return i
		}
	}
	return -1
}

// isOpcode reports whether b is a recognized command opcode. Padding is not
// an opcode: a zero byte only ends the stream when everything after it is
// zero too.
func isOpcode(b byte) bool {
	switch b {
	case opMoveTo, opLineTo, opSmoothCubic, opCubicTo, opQuadTo, opClose, opCubicLegacy:
		return true
	}
	return false
}

// allZero reports whether every byte of b is zero.
func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// readFloats reads n little-endian float32 values starting at off, widened
// to float64. Returns ok=false when the buffer is too short.
func readFloats(data []byte, off, n int) ([6]float64, bool) {
	var out [6]float64
	if off+n*4 > len(data) {
		return out, false
	}
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(data[off+i*4:])
		out[i] = float64(math.Float32frombits(bits))
	}
	return out, true
}
