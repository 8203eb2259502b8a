package glance

// jpegOrientation scans the APP1/EXIF segment of a JPEG stream for the
// orientation tag (0x0112) without decoding the image. It returns 1 (upright)
// when the stream is not a JPEG, carries no EXIF, or the tag is malformed.
func jpegOrientation(data []byte) int {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return 1
	}

	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			return 1
		}
		marker := data[pos+1]
		pos += 2

		// Standalone markers carry no length word.
		if marker == 0xD8 || (marker >= 0xD0 && marker <= 0xD7) {
			continue
		}
		// Start of scan: entropy-coded data follows, no EXIF past this point.
		if marker == 0xDA {
			return 1
		}
		if pos+2 > len(data) {
			return 1
		}
		segLen := int(data[pos])<<8 | int(data[pos+1])
		if segLen < 2 || pos+segLen > len(data) {
			return 1
		}
		if marker == 0xE1 {
			if o := parseExifOrientation(data[pos+2 : pos+segLen]); o != 0 {
				return o
			}
		}
		pos += segLen
	}
	return 1
}

// parseExifOrientation walks the TIFF header and first IFD inside an APP1
// payload. Returns 0 when no valid orientation tag is found.
func parseExifOrientation(seg []byte) int {
	const exifHeaderLen = 6
	if len(seg) < exifHeaderLen+8 {
		return 0
	}
	if string(seg[:4]) != "Exif" || seg[4] != 0 || seg[5] != 0 {
		return 0
	}
	tiff := seg[exifHeaderLen:]

	var littleEndian bool
	switch {
	case tiff[0] == 0x49 && tiff[1] == 0x49:
		littleEndian = true
	case tiff[0] == 0x4D && tiff[1] == 0x4D:
		littleEndian = false
	default:
		return 0
	}

	read16 := func(off int) uint16 {
		if off+2 > len(tiff) {
			return 0
		}
		if littleEndian {
			return uint16(tiff[off]) | uint16(tiff[off+1])<<8
		}
		return uint16(tiff[off])<<8 | uint16(tiff[off+1])
	}
	read32 := func(off int) uint32 {
		if off+4 > len(tiff) {
			return 0
		}
		if littleEndian {
			return uint32(tiff[off]) | uint32(tiff[off+1])<<8 | uint32(tiff[off+2])<<16 | uint32(tiff[off+3])<<24
		}
		return uint32(tiff[off])<<24 | uint32(tiff[off+1])<<16 | uint32(tiff[off+2])<<8 | uint32(tiff[off+3])
	}

	if read16(2) != 42 {
		return 0
	}
	ifdOffset := int(read32(4))
	if ifdOffset < 8 || ifdOffset+2 > len(tiff) {
		return 0
	}

	const orientationTag = 0x0112
	numEntries := int(read16(ifdOffset))
	entry := ifdOffset + 2
	for i := 0; i < numEntries && entry+12 <= len(tiff); i++ {
		if read16(entry) == orientationTag {
			if read16(entry+2) != 3 { // SHORT
				return 0
			}
			if read32(entry+4) != 1 {
				return 0
			}
			o := int(read16(entry + 8))
			if o >= 1 && o <= 8 {
				return o
			}
			return 0
		}
		entry += 12
	}
	return 0
}
