package path

import (
	"encoding/binary"
	"math"
	"math/rand"
	"testing"
)

// appendCmd appends an opcode byte and its float32 operands to buf.
func appendCmd(buf []byte, op byte, operands ...float32) []byte {
	buf = append(buf, op)
	for _, f := range operands {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(f))
		buf = append(buf, b[:]...)
	}
	return buf
}

func TestDecodeRoundTrip(t *testing.T) {
	var buf []byte
	buf = appendCmd(buf, opMoveTo, 1, 2)
	buf = appendCmd(buf, opLineTo, 10, 2)
	buf = appendCmd(buf, opLineTo, 10, 12)
	buf = appendCmd(buf, opLineTo, 1, 12)
	buf = append(buf, opClose)

	cmds := Decode(buf)
	want := []Command{
		MoveTo{X: 1, Y: 2},
		LineTo{X: 10, Y: 2},
		LineTo{X: 10, Y: 12},
		LineTo{X: 1, Y: 12},
		Close{},
	}
	if len(cmds) != len(want) {
		t.Fatalf("Decode returned %d commands, want %d", len(cmds), len(want))
	}
	for i, cmd := range cmds {
		if cmd != want[i] {
			t.Errorf("command %d = %#v, want %#v", i, cmd, want[i])
		}
	}
}

func TestDecodeCurves(t *testing.T) {
	var buf []byte
	buf = appendCmd(buf, opMoveTo, 0, 0)
	buf = appendCmd(buf, opQuadTo, 5, 10, 10, 0)
	buf = appendCmd(buf, opCubicTo, 1, 1, 2, 2, 3, 3)
	buf = appendCmd(buf, opCubicLegacy, 4, 4, 5, 5, 6, 6)

	cmds := Decode(buf)
	if len(cmds) != 4 {
		t.Fatalf("Decode returned %d commands, want 4", len(cmds))
	}
	if q, ok := cmds[1].(QuadTo); !ok || q != (QuadTo{CX: 5, CY: 10, X: 10, Y: 0}) {
		t.Errorf("command 1 = %#v, want QuadTo{5 10 10 0}", cmds[1])
	}
	if c, ok := cmds[2].(CubicTo); !ok || c != (CubicTo{C1X: 1, C1Y: 1, C2X: 2, C2Y: 2, X: 3, Y: 3}) {
		t.Errorf("command 2 = %#v, want CubicTo{1 1 2 2 3 3}", cmds[2])
	}
	// Legacy opcode decodes to the same command type.
	if c, ok := cmds[3].(CubicTo); !ok || c != (CubicTo{C1X: 4, C1Y: 4, C2X: 5, C2Y: 5, X: 6, Y: 6}) {
		t.Errorf("command 3 = %#v, want CubicTo{4 4 5 5 6 6}", cmds[3])
	}
}

func TestDecodeSmoothCubicReflection(t *testing.T) {
	// A cubic ending at (10, 10) with cp2 = (8, 4), followed by a smooth
	// cubic: cp1 must be the reflection (2*10-8, 2*10-4) = (12, 16).
	var buf []byte
	buf = appendCmd(buf, opMoveTo, 0, 0)
	buf = appendCmd(buf, opCubicTo, 2, 2, 8, 4, 10, 10)
	buf = appendCmd(buf, opSmoothCubic, 14, 20, 20, 10)

	cmds := Decode(buf)
	if len(cmds) != 3 {
		t.Fatalf("Decode returned %d commands, want 3", len(cmds))
	}
	c, ok := cmds[2].(CubicTo)
	if !ok {
		t.Fatalf("command 2 = %#v, want CubicTo", cmds[2])
	}
	if c.C1X != 12 || c.C1Y != 16 {
		t.Errorf("smooth cubic cp1 = (%g, %g), want (12, 16)", c.C1X, c.C1Y)
	}
	if c.C2X != 14 || c.C2Y != 20 || c.X != 20 || c.Y != 10 {
		t.Errorf("smooth cubic tail = %#v, want cp2=(14,20) end=(20,10)", c)
	}
}

func TestDecodeSmoothCubicAfterLine(t *testing.T) {
	// After MoveTo/LineTo the derived cp1 is the current point.
	var buf []byte
	buf = appendCmd(buf, opMoveTo, 0, 0)
	buf = appendCmd(buf, opLineTo, 5, 5)
	buf = appendCmd(buf, opSmoothCubic, 7, 9, 10, 10)

	cmds := Decode(buf)
	c, ok := cmds[2].(CubicTo)
	if !ok {
		t.Fatalf("command 2 = %#v, want CubicTo", cmds[2])
	}
	if c.C1X != 5 || c.C1Y != 5 {
		t.Errorf("cp1 after LineTo = (%g, %g), want (5, 5)", c.C1X, c.C1Y)
	}
}

func TestDecodeSmoothCubicDegenerate(t *testing.T) {
	// With no usable previous command, cp1 falls back to cp2.
	var buf []byte
	buf = appendCmd(buf, opSmoothCubic, 3, 4, 10, 10)

	cmds := Decode(buf)
	if len(cmds) != 1 {
		t.Fatalf("Decode returned %d commands, want 1", len(cmds))
	}
	c := cmds[0].(CubicTo)
	if c.C1X != 3 || c.C1Y != 4 {
		t.Errorf("degenerate cp1 = (%g, %g), want cp2 (3, 4)", c.C1X, c.C1Y)
	}
}

func TestDecodePaddingStops(t *testing.T) {
	var buf []byte
	buf = appendCmd(buf, opMoveTo, 1, 1)
	buf = appendCmd(buf, opLineTo, 2, 2)
	buf = append(buf, 0, 0, 0, 0, 0, 0, 0, 0)

	cmds := Decode(buf)
	if len(cmds) != 2 {
		t.Errorf("Decode with zero padding returned %d commands, want 2", len(cmds))
	}
}

func TestDecodeTruncatedOperands(t *testing.T) {
	var buf []byte
	buf = appendCmd(buf, opMoveTo, 1, 1)
	buf = append(buf, opLineTo, 0x00, 0x00) // only 2 of 8 operand bytes

	cmds := Decode(buf)
	if len(cmds) != 1 {
		t.Errorf("Decode with truncated operands returned %d commands, want 1", len(cmds))
	}
}

func TestDecodeResync(t *testing.T) {
	t.Run("ResumesWithinWindow", func(t *testing.T) {
		var buf []byte
		buf = appendCmd(buf, opMoveTo, 0, 0)
		buf = append(buf, 0xAB)          // unknown opcode
		buf = append(buf, 0xCD, 0xEF, 7) // garbage, no opcode bytes
		buf = appendCmd(buf, opLineTo, 3, 4)

		cmds := Decode(buf)
		if len(cmds) != 2 {
			t.Fatalf("Decode returned %d commands, want 2", len(cmds))
		}
		if l, ok := cmds[1].(LineTo); !ok || l != (LineTo{X: 3, Y: 4}) {
			t.Errorf("resynced command = %#v, want LineTo{3 4}", cmds[1])
		}
	})

	t.Run("StopsBeyondWindow", func(t *testing.T) {
		var buf []byte
		buf = appendCmd(buf, opMoveTo, 0, 0)
		buf = append(buf, 0xAB)
		for i := 0; i < resyncWindow; i++ {
			buf = append(buf, 0xFF) // no recognizable opcode in the window
		}
		buf = appendCmd(buf, opLineTo, 3, 4) // just out of reach

		cmds := Decode(buf)
		if len(cmds) != 1 {
			t.Errorf("Decode past resync window returned %d commands, want 1", len(cmds))
		}
	})

	t.Run("LastByteOfWindow", func(t *testing.T) {
		var buf []byte
		buf = appendCmd(buf, opMoveTo, 0, 0)
		buf = append(buf, 0xAB)
		for i := 0; i < resyncWindow-1; i++ {
			buf = append(buf, 0xFF)
		}
		buf = appendCmd(buf, opLineTo, 3, 4) // exactly the 30th byte after

		cmds := Decode(buf)
		if len(cmds) != 2 {
			t.Errorf("Decode at window edge returned %d commands, want 2", len(cmds))
		}
	})
}

func TestDecodeTerminatesOnRandomInput(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 100; trial++ {
		n := rng.Intn(4096)
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = byte(rng.Intn(256))
		}
		cmds := Decode(buf)
		if len(cmds) > maxCommands {
			t.Fatalf("trial %d: %d commands exceeds cap %d", trial, len(cmds), maxCommands)
		}
	}
}

func TestDecodeCommandCap(t *testing.T) {
	// A blob of Close opcodes is one command per byte; the cap must hold.
	buf := make([]byte, maxCommands+500)
	for i := range buf {
		buf[i] = opClose
	}
	cmds := Decode(buf)
	if len(cmds) != maxCommands {
		t.Errorf("Decode returned %d commands, want cap %d", len(cmds), maxCommands)
	}
}

func TestDecodeContours(t *testing.T) {
	var buf []byte
	buf = appendCmd(buf, opMoveTo, 0, 0)
	buf = appendCmd(buf, opLineTo, 10, 0)
	buf = appendCmd(buf, opLineTo, 10, 10)
	buf = append(buf, opClose)
	buf = appendCmd(buf, opMoveTo, 3, 3)
	buf = appendCmd(buf, opLineTo, 7, 3)
	buf = appendCmd(buf, opLineTo, 7, 7)
	buf = append(buf, opClose)

	contours := DecodeContours(buf)
	if len(contours) != 2 {
		t.Fatalf("DecodeContours returned %d contours, want 2", len(contours))
	}
	if len(contours[0]) != 4 || len(contours[1]) != 4 {
		t.Errorf("contour lengths = %d, %d, want 4, 4", len(contours[0]), len(contours[1]))
	}
	if _, ok := contours[1][0].(MoveTo); !ok {
		t.Errorf("second contour starts with %#v, want MoveTo", contours[1][0])
	}
}

func TestSplitContoursDropsLeadingCommands(t *testing.T) {
	cmds := []Command{
		LineTo{X: 1, Y: 1}, // no preceding MoveTo
		MoveTo{X: 0, Y: 0},
		LineTo{X: 2, Y: 2},
	}
	contours := SplitContours(cmds)
	if len(contours) != 1 {
		t.Fatalf("SplitContours returned %d contours, want 1", len(contours))
	}
	if len(contours[0]) != 2 {
		t.Errorf("contour has %d commands, want 2", len(contours[0]))
	}
}

func TestDecodeEmptyInput(t *testing.T) {
	if cmds := Decode(nil); len(cmds) != 0 {
		t.Errorf("Decode(nil) returned %d commands, want 0", len(cmds))
	}
	if cmds := Decode([]byte{}); len(cmds) != 0 {
		t.Errorf("Decode(empty) returned %d commands, want 0", len(cmds))
	}
}
