package core

// Checksum computes the Internet checksum of b. The 16-bit word at index skipword
// is treated as zero, which lets the checksum field of a header be skipped without
// clearing it first. A trailing odd byte is padded with zero.
func Checksum(b []byte, skipword int) uint16 {
	var sum uint32

	for i := 0; i+1 < len(b); i += 2 {
		if i/2 == skipword {
			continue
		}
		sum += uint32(b[i])<<8 | uint32(b[i+1])
	}

	if len(b)%2 == 1 {
		sum += uint32(b[len(b)-1]) << 8
	}

	return ^foldChecksum(sum)
}

// ValidChecksum returns whether b, checksum field included, sums to zero.
func ValidChecksum(b []byte) bool {
	return Checksum(b, -1) == 0
}

// foldChecksum folds the carries of a 32-bit one's complement sum back into 16 bits.
func foldChecksum(sum uint32) uint16 {
	for sum > 0xffff {
		sum = (sum >> 16) + (sum & 0xffff)
	}
	return uint16(sum)
}
