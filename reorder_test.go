package slpz

import (
	"bytes"
	"testing"

	"pgregory.net/rapid"
)

func TestReorderEmptyStream(t *testing.T) {
	var sizes SizeTable
	out, err := Reorder(nil, &sizes)
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("expected a bare 4-byte zero count, got %d bytes", len(out))
	}
	if out[0] != 0 || out[1] != 0 || out[2] != 0 || out[3] != 0 {
		t.Fatalf("expected count 0, got %v", out)
	}

	back, err := Unreorder(out, &sizes)
	if err != nil {
		t.Fatalf("Unreorder: %v", err)
	}
	if len(back) != 0 {
		t.Fatalf("expected empty stream back, got %d bytes", len(back))
	}
}

func TestReorderSingleEvent(t *testing.T) {
	var sizes SizeTable
	sizes[0x10] = 3
	stream := []byte{0x10, 'a', 'b', 'c'}

	reordered, err := Reorder(stream, &sizes)
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	back, err := Unreorder(reordered, &sizes)
	if err != nil {
		t.Fatalf("Unreorder: %v", err)
	}
	if !bytes.Equal(back, stream) {
		t.Fatalf("round trip mismatch: got %v, want %v", back, stream)
	}
}

func TestReorderColumnMajorLayout(t *testing.T) {
	// Two occurrences of command 0x20 (payload size 2) interleaved with one
	// occurrence of command 0x21 (payload size 1). Column-major layout
	// means all first-bytes of 0x20's occurrences precede all second-bytes.
	var sizes SizeTable
	sizes[0x20] = 2
	sizes[0x21] = 1

	stream := []byte{
		0x20, 0x01, 0x02,
		0x21, 0x09,
		0x20, 0x03, 0x04,
	}

	reordered, err := Reorder(stream, &sizes)
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	// 4-byte count (3) + 3-byte command sequence + column data.
	// Command 0x20 occupies the lower command slots (0x20 < 0x21), so its
	// two columns (byte 0, then byte 1) come first: 0x01,0x03 then
	// 0x02,0x04, followed by 0x21's single column: 0x09.
	wantCommands := []byte{0x20, 0x21, 0x20}
	gotCommands := reordered[4:7]
	if !bytes.Equal(gotCommands, wantCommands) {
		t.Fatalf("command sequence: got %v, want %v", gotCommands, wantCommands)
	}

	wantColumns := []byte{0x01, 0x03, 0x02, 0x04, 0x09}
	gotColumns := reordered[7:]
	if !bytes.Equal(gotColumns, wantColumns) {
		t.Fatalf("column data: got %v, want %v", gotColumns, wantColumns)
	}

	back, err := Unreorder(reordered, &sizes)
	if err != nil {
		t.Fatalf("Unreorder: %v", err)
	}
	if !bytes.Equal(back, stream) {
		t.Fatalf("round trip mismatch: got %v, want %v", back, stream)
	}
}

func TestUnreorderRejectsUndeclaredCommand(t *testing.T) {
	var sizes SizeTable
	sizes[0x10] = 1

	reordered := []byte{1, 0, 0, 0, 0x99, 'x'}
	_, err := Unreorder(reordered, &sizes)
	if kind, ok := KindOf(err); !ok || kind != MalformedReordered {
		t.Fatalf("expected MalformedReordered, got %v", err)
	}
}

func TestUnreorderRejectsLengthMismatch(t *testing.T) {
	var sizes SizeTable
	sizes[0x10] = 3

	reordered := []byte{1, 0, 0, 0, 0x10, 'a', 'b'} // missing one column byte
	_, err := Unreorder(reordered, &sizes)
	if kind, ok := KindOf(err); !ok || kind != MalformedReordered {
		t.Fatalf("expected MalformedReordered, got %v", err)
	}
}

// TestReorderIsABijection checks Unreorder(Reorder(x)) == x for randomly
// generated, well-formed event streams of varying shape.
func TestReorderIsABijection(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		var sizes SizeTable
		numCommands := rapid.IntRange(1, 4).Draw(rt, "numCommands")
		commands := make([]byte, 0, numCommands)
		for i := 0; i < numCommands; i++ {
			cmd := rapid.Byte().Draw(rt, "cmd")
			size := rapid.Uint16Range(1, 8).Draw(rt, "size")
			if sizes[cmd] == 0 {
				sizes[cmd] = size
				commands = append(commands, cmd)
			}
		}
		if len(commands) == 0 {
			return
		}

		numEvents := rapid.IntRange(0, 20).Draw(rt, "numEvents")
		var stream []byte
		for i := 0; i < numEvents; i++ {
			cmd := commands[rapid.IntRange(0, len(commands)-1).Draw(rt, "choice")]
			stream = append(stream, cmd)
			payload := rapid.SliceOfN(rapid.Byte(), int(sizes[cmd]), int(sizes[cmd])).Draw(rt, "payload")
			stream = append(stream, payload...)
		}

		reordered, err := Reorder(stream, &sizes)
		if err != nil {
			rt.Fatalf("Reorder: %v", err)
		}
		back, err := Unreorder(reordered, &sizes)
		if err != nil {
			rt.Fatalf("Unreorder: %v", err)
		}
		if !bytes.Equal(back, stream) {
			rt.Fatalf("round trip mismatch: got %v, want %v", back, stream)
		}
	})
}
