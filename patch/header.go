package patch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Array is one initialised array found in a C patch header.
type Array struct {
	Name   string
	Type   string
	Values []uint16
}

// qualifiers are skipped when looking for the element type of an array.
var qualifiers = map[string]bool{
	"const":    true,
	"static":   true,
	"volatile": true,
	"unsigned": true,
	"PROGMEM":  true,
}

func (a Array) namedIndex() bool {
	return strings.Contains(strings.ToLower(a.Name), "0x15")
}

func (a Array) wideElements() bool {
	switch a.Type {
	case "uint16_t", "short", "word":
		return true
	}
	return false
}

// ParseHeader extracts the initialised arrays of a C header such as
// patch_full.h or patch_ssb_compressed.h, in declaration order.
//
//	const uint8_t ssb_patch_content[] PROGMEM = { 0x15, 0x00, ... };
//	const uint16_t cmd_0x15[] PROGMEM = { 0, 6, 479, ... };
func ParseHeader(r io.Reader) ([]Array, error) {
	var (
		arrays    []Array
		cur       *Array
		inComment bool
		lineNum   int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		line, inComment = stripComments(line, inComment)
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if cur == nil {
			open := strings.Index(line, "{")
			bracket := strings.Index(line, "[")
			if bracket == -1 || !strings.Contains(line, "=") {
				continue
			}
			fields := strings.Fields(line[:bracket])
			if len(fields) == 0 {
				return nil, fmt.Errorf("patch: array without a name in line %d", lineNum)
			}
			arr := Array{Name: fields[len(fields)-1]}
			for i := len(fields) - 2; i >= 0; i-- {
				if !qualifiers[fields[i]] {
					arr.Type = fields[i]
					break
				}
			}
			arrays = append(arrays, arr)
			cur = &arrays[len(arrays)-1]
			if open == -1 {
				continue
			}
			line = line[open+1:]
		} else if open := strings.Index(line, "{"); open != -1 {
			line = line[open+1:]
		}

		closed := false
		if end := strings.Index(line, "}"); end != -1 {
			line = line[:end]
			closed = true
		}

		for _, tok := range strings.Split(line, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			v, err := strconv.ParseUint(tok, 0, 16)
			if err != nil {
				return nil, fmt.Errorf("patch: cannot parse %q in line %d: %v", tok, lineNum, err)
			}
			cur.Values = append(cur.Values, uint16(v))
		}

		if closed {
			cur = nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if cur != nil {
		return nil, fmt.Errorf("patch: array %s is not terminated", cur.Name)
	}
	return arrays, nil
}

// stripComments removes // and /* */ comments from one line. inComment
// carries an unterminated block comment across lines.
func stripComments(line string, inComment bool) (string, bool) {
	var b strings.Builder
	for len(line) > 0 {
		if inComment {
			end := strings.Index(line, "*/")
			if end == -1 {
				return b.String(), true
			}
			line = line[end+2:]
			inComment = false
			continue
		}

		block := strings.Index(line, "/*")
		single := strings.Index(line, "//")
		if single != -1 && (block == -1 || single < block) {
			b.WriteString(line[:single])
			return b.String(), false
		}
		if block == -1 {
			b.WriteString(line)
			return b.String(), false
		}
		b.WriteString(line[:block])
		line = line[block+2:]
		inComment = true
	}
	return b.String(), inComment
}

// FromHeader builds an Image from a C patch header. A single array is a
// full patch. Two arrays are a compressed patch: the CmdPatchArgs line index
// is the one named after 0x15 or, failing that, the one with 16 bit
// elements, in whichever order they are declared.
func FromHeader(r io.Reader) (*Image, error) {
	arrays, err := ParseHeader(r)
	if err != nil {
		return nil, err
	}

	content, index := 0, -1
	switch len(arrays) {
	case 1:
	case 2:
		if index, err = indexArray(arrays); err != nil {
			return nil, err
		}
		content = 1 - index
	default:
		return nil, fmt.Errorf("patch: expected 1 or 2 arrays in header, found %d", len(arrays))
	}

	data := make([]byte, len(arrays[content].Values))
	for i, v := range arrays[content].Values {
		if v > 0xFF {
			return nil, fmt.Errorf("patch: %s[%d] = %d does not fit in a byte", arrays[content].Name, i, v)
		}
		data[i] = byte(v)
	}

	var img *Image
	if index == -1 {
		img = Raw(data)
	} else {
		img = Compress(data, arrays[index].Values)
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}

// indexArray picks the line index out of the two arrays of a compressed
// patch header.
func indexArray(arrays []Array) (int, error) {
	var byName, byType []int
	for i, a := range arrays {
		if a.namedIndex() {
			byName = append(byName, i)
		}
		if a.wideElements() {
			byType = append(byType, i)
		}
	}

	switch {
	case len(byName) == 1:
		return byName[0], nil
	case len(byName) == 0 && len(byType) == 1:
		return byType[0], nil
	}
	return 0, fmt.Errorf("patch: cannot tell which of %s and %s is the 0x15 line index", arrays[0].Name, arrays[1].Name)
}

// FromFile loads a patch from disk. Files ending in .h are parsed as C
// headers, anything else is read as an uncompressed binary.
func FromFile(path string) (*Image, error) {
	if strings.EqualFold(filepath.Ext(path), ".h") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		img, err := FromHeader(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return img, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img := Raw(data)
	if err := img.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}
