package pack

import "fmt"

// applyDelta reconstructs a full object body from a base body and a git
// delta instruction stream (the standard OFS_DELTA/REF_DELTA payload
// format: a source-size varint, a target-size varint, then a run of
// copy/insert instructions).
func applyDelta(base, delta []byte) ([]byte, error) {
	srcSize, n := readDeltaSize(delta)
	delta = delta[n:]
	if int(srcSize) != len(base) {
		return nil, fmt.Errorf("pack: delta base size mismatch: want %d, got %d", srcSize, len(base))
	}

	targetSize, n := readDeltaSize(delta)
	delta = delta[n:]

	out := make([]byte, 0, targetSize)
	for len(delta) > 0 {
		op := delta[0]
		delta = delta[1:]

		if op&0x80 != 0 {
			// Copy instruction: the low 4 bits select which of the
			// following 4 offset bytes are present, the next 3 bits
			// select which of the following 3 size bytes are present.
			var offset, size uint32
			if op&0x01 != 0 {
				offset |= uint32(delta[0])
				delta = delta[1:]
			}
			if op&0x02 != 0 {
				offset |= uint32(delta[0]) << 8
				delta = delta[1:]
			}
			if op&0x04 != 0 {
				offset |= uint32(delta[0]) << 16
				delta = delta[1:]
			}
			if op&0x08 != 0 {
				offset |= uint32(delta[0]) << 24
				delta = delta[1:]
			}
			if op&0x10 != 0 {
				size |= uint32(delta[0])
				delta = delta[1:]
			}
			if op&0x20 != 0 {
				size |= uint32(delta[0]) << 8
				delta = delta[1:]
			}
			if op&0x40 != 0 {
				size |= uint32(delta[0]) << 16
				delta = delta[1:]
			}
			if size == 0 {
				size = 0x10000
			}
			if int(offset)+int(size) > len(base) {
				return nil, fmt.Errorf("pack: delta copy instruction out of range")
			}
			out = append(out, base[offset:offset+size]...)
		} else if op != 0 {
			// Insert instruction: op itself is the literal byte count.
			n := int(op)
			if n > len(delta) {
				return nil, fmt.Errorf("pack: delta insert instruction truncated")
			}
			out = append(out, delta[:n]...)
			delta = delta[n:]
		} else {
			return nil, fmt.Errorf("pack: reserved delta opcode 0")
		}
	}

	if int64(len(out)) != targetSize {
		return nil, fmt.Errorf("pack: delta produced %d bytes, wanted %d", len(out), targetSize)
	}
	return out, nil
}

// readDeltaSize reads a delta header size varint: 7 bits per byte, low to
// high, continuation in the top bit.
func readDeltaSize(b []byte) (int64, int) {
	var size int64
	var shift uint
	var i int
	for {
		c := b[i]
		size |= int64(c&0x7f) << shift
		shift += 7
		i++
		if c&0x80 == 0 {
			break
		}
	}
	return size, i
}
