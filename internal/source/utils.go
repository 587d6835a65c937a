package source

import (
	"bytes"
	"path/filepath"
	"slices"
	"sort"
)

// normalizeCRLF folds every \r\n into \n and leaves lone \r alone.
// The flag reports whether anything was replaced.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	changed := false

	i := 0
	for i < len(content) {
		// Normalize \r\n to \n.
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
			changed = true
		} else {
			out = append(out, content[i])
			i++
		}
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) < 3 {
		return content, false
	}

	if content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}

	return content, false
}

// restoreEncoding undoes removeBOM and normalizeCRLF as recorded in flags.
// Line feeds already preceded by '\r' are left alone.
func restoreEncoding(content []byte, flags FileFlags) []byte {
	extra := 0
	if flags&FileHadBOM != 0 {
		extra += 3
	}
	if flags&FileNormalizedCRLF != 0 {
		extra += bytes.Count(content, []byte{'\n'})
	}
	out := make([]byte, 0, len(content)+extra)
	if flags&FileHadBOM != 0 {
		out = append(out, 0xEF, 0xBB, 0xBF)
	}
	if flags&FileNormalizedCRLF == 0 {
		return append(out, content...)
	}
	for i, b := range content {
		if b == '\n' && (i == 0 || content[i-1] != '\r') {
			out = append(out, '\r')
		}
		out = append(out, b)
	}
	return out
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, bytes.Count(content, []byte{'\n'}))
	for i, b := range content {
		if b == '\n' {
			out = append(out, safeUint32(i))
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// newlines strictly before off give the 0-based line
	line := sort.Search(len(lineIdx), func(i int) bool { return lineIdx[i] >= off })
	var startOff uint32
	if line > 0 {
		startOff = lineIdx[line-1] + 1
	}
	return LineCol{Line: safeUint32(line + 1), Col: off - startOff + 1}
}

func normalizePath(p string) string {
	// slash form keeps paths stable across platforms
	return filepath.ToSlash(filepath.Clean(p))
}
