// Package patch reconstructs the line stream of a Si473x SSB/NBFM patch.
//
// Patches are distributed in two forms. The full form is a flat list of
// 8 byte lines, each starting with its command byte. The compressed form
// drops the command byte from every line and keeps a separate list of the
// lines that start with CmdPatchArgs; every other line starts with
// CmdPatchData.
//
// See Si47XX PROGRAMMING GUIDE; AN332 (REV 1.0) pages 64 and 215-220.
package patch

import (
	"errors"
	"fmt"
)

//goland:noinspection GoUnusedConst
const (
	// MaxSize is the patch RAM capacity of the chip in bytes.
	MaxSize = 15856

	// LineSize is the number of bytes sent in one bus transaction.
	LineSize = 8

	// PayloadSize is the number of bytes of a compressed line.
	PayloadSize = LineSize - 1

	// CmdPatchArgs is the alternate command byte, listed in the index of a compressed patch.
	CmdPatchArgs = 0x15

	// CmdPatchData is the command byte of most lines.
	CmdPatchData = 0x16
)

// Encoding tells how the bytes of an Image are laid out.
type Encoding int

const (
	// Uncompressed images are a flat sequence of 8 byte lines, command byte included.
	Uncompressed Encoding = iota

	// Compressed images are 7 byte lines paired with an index of CmdPatchArgs lines.
	Compressed
)

func (e Encoding) String() string {
	switch e {
	case Uncompressed:
		return "uncompressed"
	case Compressed:
		return "compressed"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// ErrTooLarge is returned for images that do not fit in the patch RAM.
var ErrTooLarge = errors.New("patch: image larger than patch RAM")

// IndexError reports an index entry pointing past the last line.
type IndexError struct {
	Line  uint16
	Lines int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("patch: index entry %d out of range, image has %d lines", e.Line, e.Lines)
}

// Image is a patch blob as held in host memory. It is read-only for the
// duration of a transfer and never retained by the decoder.
type Image struct {
	Data     []byte
	Encoding Encoding

	// Index lists the 0-based lines that start with CmdPatchArgs.
	// Only used by compressed images; order and duplicates do not matter.
	Index []uint16
}

// Raw wraps an uncompressed patch.
func Raw(data []byte) *Image {
	return &Image{Data: data, Encoding: Uncompressed}
}

// Compress wraps a compressed patch and its CmdPatchArgs line index.
func Compress(data []byte, index []uint16) *Image {
	return &Image{Data: data, Encoding: Compressed, Index: index}
}

// LineCount returns the number of bus transactions needed to send the image.
func (im *Image) LineCount() int {
	size := LineSize
	if im.Encoding == Compressed {
		size = PayloadSize
	}
	return (len(im.Data) + size - 1) / size
}

// Validate checks the image against the chip limits.
func (im *Image) Validate() error {
	if len(im.Data) > MaxSize {
		return fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, len(im.Data), MaxSize)
	}

	switch im.Encoding {
	case Uncompressed:
		return nil
	case Compressed:
		lines := im.LineCount()
		for _, line := range im.Index {
			if int(line) >= lines {
				return &IndexError{Line: line, Lines: lines}
			}
		}
		return nil
	default:
		return fmt.Errorf("patch: unknown encoding %v", im.Encoding)
	}
}

func (im *Image) String() string {
	return fmt.Sprintf("%v patch, %d bytes in %d lines", im.Encoding, len(im.Data), im.LineCount())
}
