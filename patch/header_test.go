package patch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullHeader = `
/*
 * SSB patch for whole SSBRX full download
 */
#include <Arduino.h>

const PROGMEM uint8_t ssb_patch_content_full[] =
{ // first line carries the init command
    0x15, 0x00, 0x0F, 0xE0, 0xF2, 0x73, 0x76, 0x2F,
    0x16, 0x6F, 0x26, 0x1E, 0x00, 0x4B, 0x2C, 0x58,
    0x16, 0xA3, 0x74 /* short */ };

const int size_content_full = sizeof ssb_patch_content_full;
`

const compressedHeader = `
const uint8_t ssb_patch_content[] PROGMEM = { 0x00, 0x0F, 0xE0, 0xF2, 0x73, 0x76, 0x2F,
  0x6F, 0x26, 0x1E, 0x00, 0x4B, 0x2C, 0x58,
  0xA3, 0x74, 0x0F, 0xE0, 0x4C, 0x36, 0xE4 };

// lines starting with 0x15
const uint16_t cmd_0x15[] PROGMEM = {0, 2};
`

const indexFirstHeader = `
static const unsigned short lines_with_args[] = {0, 2};
static const unsigned char ssb_patch_content[] = { 0x00, 0x0F, 0xE0, 0xF2, 0x73, 0x76, 0x2F,
  0x6F, 0x26, 0x1E, 0x00, 0x4B, 0x2C, 0x58,
  0xA3, 0x74, 0x0F, 0xE0, 0x4C, 0x36, 0xE4 };
`

func TestParseHeader(t *testing.T) {
	arrays, err := ParseHeader(strings.NewReader(compressedHeader))
	require.NoError(t, err)
	require.Len(t, arrays, 2)

	assert.Equal(t, "ssb_patch_content", arrays[0].Name)
	assert.Equal(t, "uint8_t", arrays[0].Type)
	assert.Len(t, arrays[0].Values, 21)
	assert.Equal(t, uint16(0x2F), arrays[0].Values[6])
	assert.Equal(t, "cmd_0x15", arrays[1].Name)
	assert.Equal(t, []uint16{0, 2}, arrays[1].Values)
	assert.Equal(t, "uint16_t", arrays[1].Type)

	arrays, err = ParseHeader(strings.NewReader(indexFirstHeader))
	require.NoError(t, err)
	require.Len(t, arrays, 2)
	assert.Equal(t, "short", arrays[0].Type)
	assert.Equal(t, "char", arrays[1].Type)
}

func TestFromHeader(t *testing.T) {
	testCases := []struct {
		name      string
		header    string
		encoding  Encoding
		lines     int
		wantError bool
	}{
		{name: "full", header: fullHeader, encoding: Uncompressed, lines: 3},
		{name: "compressed", header: compressedHeader, encoding: Compressed, lines: 3},
		{name: "no arrays", header: "#define NOTHING 1\n", wantError: true},
		{name: "not a byte", header: "uint8_t p[] = { 0x100 };", wantError: true},
		{name: "garbage value", header: "uint8_t p[] = { 0xZZ };", wantError: true},
		{name: "unterminated", header: "uint8_t p[] = { 0x01,\n", wantError: true},
		{name: "index declared first", header: indexFirstHeader, encoding: Compressed, lines: 3},
		{name: "index named first", header: "uint8_t cmd_0x15[] = { 0, 1 };\nuint8_t p[] = { 1, 2, 3, 4, 5, 6, 7, 8, 9 };", encoding: Compressed, lines: 2},
		{name: "no index", header: "uint8_t a[] = { 1 };\nuint8_t b[] = { 0 };", wantError: true},
		{name: "two indexes", header: "uint16_t a[] = { 1 };\nuint16_t b[] = { 0 };", wantError: true},
		{name: "index out of range", header: "uint8_t p[] = { 1, 2 };\nuint16_t i[] = { 1 };", wantError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			img, err := FromHeader(strings.NewReader(tc.header))
			if tc.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.encoding, img.Encoding)
			assert.Equal(t, tc.lines, img.LineCount())
		})
	}
}

func TestFromHeaderCompressedDecodes(t *testing.T) {
	img, err := FromHeader(strings.NewReader(compressedHeader))
	require.NoError(t, err)

	d := NewDecoder(img)
	assert.Equal(t, []byte{0x15, 0x00, 0x0F, 0xE0, 0xF2, 0x73, 0x76, 0x2F}, d.AppendLine(nil, 0))
	assert.Equal(t, []byte{0x16, 0x6F, 0x26, 0x1E, 0x00, 0x4B, 0x2C, 0x58}, d.AppendLine(nil, 1))
	assert.Equal(t, []byte{0x15, 0xA3, 0x74, 0x0F, 0xE0, 0x4C, 0x36, 0xE4}, d.AppendLine(nil, 2))
}

func TestFromHeaderIndexOrder(t *testing.T) {
	want, err := FromHeader(strings.NewReader(compressedHeader))
	require.NoError(t, err)
	got, err := FromHeader(strings.NewReader(indexFirstHeader))
	require.NoError(t, err)

	assert.Equal(t, want.Data, got.Data)
	assert.Equal(t, want.Index, got.Index)
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	header := filepath.Join(dir, "patch_full.h")
	require.NoError(t, os.WriteFile(header, []byte(fullHeader), 0o644))
	img, err := FromFile(header)
	require.NoError(t, err)
	assert.Equal(t, Uncompressed, img.Encoding)
	assert.Len(t, img.Data, 19)

	bin := filepath.Join(dir, "patch.bin")
	require.NoError(t, os.WriteFile(bin, seq(24), 0o644))
	img, err = FromFile(bin)
	require.NoError(t, err)
	assert.Equal(t, 3, img.LineCount())

	big := filepath.Join(dir, "big.bin")
	require.NoError(t, os.WriteFile(big, make([]byte, MaxSize+8), 0o644))
	_, err = FromFile(big)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = FromFile(filepath.Join(dir, "missing.h"))
	assert.Error(t, err)
}
