package shtp

// Sequence tracks the last sequence number seen on each channel.
// Outbound frames continue numbering from the same table.
type Sequence [NumChannels]uint8

// Observe records the sequence number of a received header.
// Headers on invalid channels are ignored.
func (s *Sequence) Observe(h Header) {
	if !h.Channel.Valid() {
		return
	}
	s[h.Channel] = h.Sequence
}

// Last returns the last sequence number recorded for ch
func (s *Sequence) Last(ch Channel) uint8 {
	if !ch.Valid() {
		return 0
	}
	return s[ch]
}

// Next advances the number for ch by one and returns it
func (s *Sequence) Next(ch Channel) uint8 {
	if !ch.Valid() {
		return 0
	}
	s[ch]++
	return s[ch]
}
