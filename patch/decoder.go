package patch

// Decoder produces the bus bytes of every line of an Image.
type Decoder struct {
	img *Image
	alt []uint64

	// Pad zero-fills a short trailing line up to LineSize bytes.
	// By default the trailing line keeps the byte count of the source image.
	Pad bool
}

// NewDecoder prepares img for line-by-line reconstruction. The image is
// referenced, not copied.
func NewDecoder(img *Image) *Decoder {
	d := &Decoder{img: img}
	if img.Encoding != Compressed {
		return d
	}

	lines := img.LineCount()
	d.alt = make([]uint64, (lines+63)/64)
	for _, line := range img.Index {
		if int(line) < lines {
			d.alt[line/64] |= 1 << (line % 64)
		}
	}
	return d
}

// Lines returns the number of lines in the image.
func (d *Decoder) Lines() int {
	return d.img.LineCount()
}

// Command returns the command byte of line n.
func (d *Decoder) Command(n int) byte {
	if d.img.Encoding != Compressed {
		start := n * LineSize
		if start >= len(d.img.Data) {
			return 0
		}
		return d.img.Data[start]
	}
	if n >= 0 && n/64 < len(d.alt) && d.alt[n/64]&(1<<(uint(n)%64)) != 0 {
		return CmdPatchArgs
	}
	return CmdPatchData
}

// AppendLine appends the bytes of line n to dst and returns the extended slice.
// An out of range n leaves dst untouched.
func (d *Decoder) AppendLine(dst []byte, n int) []byte {
	if n < 0 || n >= d.Lines() {
		return dst
	}

	start := len(dst)
	data := d.img.Data
	if d.img.Encoding == Compressed {
		dst = append(dst, d.Command(n))
		dst = append(dst, data[n*PayloadSize:min(n*PayloadSize+PayloadSize, len(data))]...)
	} else {
		dst = append(dst, data[n*LineSize:min(n*LineSize+LineSize, len(data))]...)
	}

	if d.Pad {
		for len(dst)-start < LineSize {
			dst = append(dst, 0)
		}
	}
	return dst
}
