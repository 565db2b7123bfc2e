package dbc

// BitSpan returns the signal's occupied bits as a half-open interval
// [first, end) in a linear numbering that matches its byte order.
//
// Little-endian signals count bits from the LSB of byte 0, so the interval is
// simply [StartBit, StartBit+Size). Big-endian signals name their MSB in the
// sawtooth numbering DBC files use; the MSB is converted to a position in
// MSB-first linear order (bit 7 of byte 0 is 0, bit 0 of byte 0 is 7, bit 7
// of byte 1 is 8) and the signal extends towards higher positions.
func (s *Signal) BitSpan() (first, end uint64) {
	start := uint64(s.StartBit)
	if s.ByteOrder == BigEndian {
		start = (start/8)*8 + (7 - start%8)
	}
	return start, start + uint64(s.Size)
}

// FitsIn reports whether the signal lies within a payload of size bytes.
func (s *Signal) FitsIn(size uint32) bool {
	_, end := s.BitSpan()
	return end <= uint64(size)*8
}

// Overlaps reports whether two signals of the same byte order share a bit.
// Signals of different byte order are compared bit by bit.
func (s *Signal) Overlaps(o *Signal) bool {
	if s.ByteOrder == o.ByteOrder {
		a0, a1 := s.BitSpan()
		b0, b1 := o.BitSpan()
		return a0 < b1 && b0 < a1
	}
	bits := make(map[uint64]struct{}, s.Size)
	for _, b := range s.physicalBits() {
		bits[b] = struct{}{}
	}
	for _, b := range o.physicalBits() {
		if _, ok := bits[b]; ok {
			return true
		}
	}
	return false
}

// physicalBits lists the LSB-first bit indexes the signal occupies.
func (s *Signal) physicalBits() []uint64 {
	out := make([]uint64, 0, s.Size)
	if s.ByteOrder == LittleEndian {
		for i := uint64(0); i < uint64(s.Size); i++ {
			out = append(out, uint64(s.StartBit)+i)
		}
		return out
	}
	first, end := s.BitSpan()
	for p := first; p < end; p++ {
		out = append(out, (p/8)*8+(7-p%8))
	}
	return out
}
