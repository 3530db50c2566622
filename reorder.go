package slpz

import "encoding/binary"

// Reorder implements the forward half of the bijection described in spec
// §4.2: it turns an event stream into (N, command sequence, per-command
// column-major payload bytes).
func Reorder(eventStream []byte, sizes *SizeTable) ([]byte, error) {
	// First pass: collect the command sequence and, per command, the start
	// offset of each occurrence's payload.
	var commands []byte
	var offsets [256][]int

	pos := 0
	for pos < len(eventStream) {
		cmd := eventStream[pos]
		size := sizes[cmd]
		if size == 0 {
			return nil, newErr(MalformedSlp, "undeclared command 0x%02X at offset %d", cmd, pos)
		}
		payloadStart := pos + 1
		if payloadStart+int(size) > len(eventStream) {
			return nil, newErr(MalformedSlp, "event with command 0x%02X at offset %d is truncated", cmd, pos)
		}

		commands = append(commands, cmd)
		offsets[cmd] = append(offsets[cmd], payloadStart)

		pos = payloadStart + int(size)
	}

	n := len(commands)

	total := 4 + n
	for k := 0; k < 256; k++ {
		total += len(offsets[k]) * int(sizes[k])
	}

	out := make([]byte, total)
	binary.LittleEndian.PutUint32(out[0:4], uint32(n))
	copy(out[4:4+n], commands)

	w := 4 + n
	for k := 0; k < 256; k++ {
		size := int(sizes[k])
		if size == 0 {
			continue
		}
		occurrences := offsets[k]
		for j := 0; j < size; j++ {
			for _, payloadStart := range occurrences {
				out[w] = eventStream[payloadStart+j]
				w++
			}
		}
	}

	return out, nil
}

// Unreorder implements the inverse of Reorder: given the reordered
// representation and the same size table used to produce it, it
// reconstructs the original event stream exactly.
func Unreorder(reordered []byte, sizes *SizeTable) ([]byte, error) {
	if len(reordered) < 4 {
		return nil, newErr(MalformedReordered, "reordered buffer is %d bytes, shorter than the 4-byte count field", len(reordered))
	}
	n := int(binary.LittleEndian.Uint32(reordered[0:4]))

	if 4+n > len(reordered) {
		return nil, newErr(MalformedReordered, "command sequence of length %d overruns a %d-byte buffer", n, len(reordered))
	}
	commands := reordered[4 : 4+n]

	var counts [256]int
	for _, cmd := range commands {
		if sizes[cmd] == 0 {
			return nil, newErr(MalformedReordered, "command sequence references undeclared command 0x%02X", cmd)
		}
		counts[cmd]++
	}

	expectedTotal := 4 + n
	var columnStart [256]int
	pos := 4 + n
	for k := 0; k < 256; k++ {
		size := int(sizes[k])
		if size == 0 {
			continue
		}
		blockLen := counts[k] * size
		expectedTotal += blockLen
		columnStart[k] = pos
		pos += blockLen
	}

	if len(reordered) != expectedTotal {
		return nil, newErr(MalformedReordered, "reordered buffer is %d bytes, expected exactly %d", len(reordered), expectedTotal)
	}

	outLen := 0
	for _, cmd := range commands {
		outLen += 1 + int(sizes[cmd])
	}
	out := make([]byte, outLen)

	var cursor [256]int
	w := 0
	for _, cmd := range commands {
		size := int(sizes[cmd])
		out[w] = cmd
		w++

		base := columnStart[cmd]
		count := counts[cmd]
		idx := cursor[cmd]
		for j := 0; j < size; j++ {
			out[w] = reordered[base+j*count+idx]
			w++
		}
		cursor[cmd]++
	}

	return out, nil
}
