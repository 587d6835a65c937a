package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"fortio.org/safecast"
)

const maxUint32 = ^uint32(0)

// NewFile stores content as-is and computes its line index.
func NewFile(name string, content []byte, flags FileFlags) *File {
	return &File{
		Name:    normalizePath(name),
		Content: content,
		LineIdx: buildLineIndex(content),
		Flags:   flags,
	}
}

// NewVirtualFile wraps an in-memory buffer (editor overlay, test or stdin).
func NewVirtualFile(name string, content []byte) *File {
	return NewFile(name, content, FileVirtual)
}

// Load reads a file from disk, normalizes CRLF/BOM, and wraps it.
func Load(path string) (*File, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return NewFile(path, content, flags), nil
}

// Encode returns content, typically an edited copy of f.Content, in the
// on-disk form Load read f from: a stripped BOM and normalized CRLF line
// endings are put back.
func (f *File) Encode(content []byte) []byte {
	return restoreEncoding(content, f.Flags)
}

// Len returns the content length in bytes.
func (f *File) Len() uint32 {
	return safeUint32(len(f.Content))
}

// Text returns the bytes covered by span, clamped to the content.
func (f *File) Text(span Span) string {
	end := min(span.End, f.Len())
	start := min(span.Start, end)
	return string(f.Content[start:end])
}

// Resolve converts a span into 1-based line and column positions.
func (f *File) Resolve(span Span) (start, end LineCol) {
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// LineCount returns the number of lines, counting a trailing partial line.
func (f *File) LineCount() int {
	return len(f.LineIdx) + 1
}

// LineSpan returns the span of a zero-based line without its '\n'.
func (f *File) LineSpan(line int) Span {
	if line < 0 || line >= f.LineCount() {
		return SpanAt(f.Len())
	}
	var start uint32
	if line > 0 {
		start = f.LineIdx[line-1] + 1
	}
	end := f.Len()
	if line < len(f.LineIdx) {
		end = f.LineIdx[line]
	}
	return Span{Start: start, End: end}
}

// GetLine возвращает строку с заданным номером (1-based) из файла.
// Если строка не существует, возвращает пустую строку.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 || int(lineNum) > f.LineCount() {
		return ""
	}
	return f.Text(f.LineSpan(int(lineNum - 1)))
}

// OffsetOf converts a zero-based line / UTF-16 character position into a byte
// offset. Positions past the end of a line clamp to the line end; lines past
// the end of the file clamp to the content length.
func (f *File) OffsetOf(pos Position) uint32 {
	if pos.Line < 0 || pos.Character < 0 || len(f.Content) == 0 {
		return 0
	}
	if pos.Line >= f.LineCount() {
		return f.Len()
	}
	line := f.LineSpan(pos.Line)
	units := 0
	off := line.Start
	for off < line.End {
		r, size := utf8.DecodeRune(f.Content[off:line.End])
		need := 1
		if r > 0xFFFF {
			need = 2
		}
		if units+need > pos.Character {
			break
		}
		units += need
		off += safeUint32(size)
		if units == pos.Character {
			break
		}
	}
	return off
}

// PositionOf converts a byte offset into a zero-based line / UTF-16 position.
func (f *File) PositionOf(offset uint32) Position {
	offset = min(offset, f.Len())
	lineIdx := f.LineIdx
	line := sort.Search(len(lineIdx), func(i int) bool { return lineIdx[i] >= offset })
	var lineStart uint32
	if line > 0 {
		lineStart = lineIdx[line-1] + 1
	}
	lineStart = min(lineStart, offset)
	units := 0
	for off := lineStart; off < offset; {
		r, size := utf8.DecodeRune(f.Content[off:offset])
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		off += safeUint32(size)
	}
	return Position{Line: line, Character: units}
}

// SpanOf converts an editor range into a byte span.
func (f *File) SpanOf(r Range) Span {
	return SpanFromBounds(f.OffsetOf(r.Start), f.OffsetOf(r.End))
}

// RangeOf converts a byte span into an editor range.
func (f *File) RangeOf(span Span) Range {
	return Range{Start: f.PositionOf(span.Start), End: f.PositionOf(span.End)}
}

// FormatPath форматирует путь к файлу в зависимости от режима.
// mode: "absolute", "relative", "basename", "auto"
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := filepath.Abs(f.Name); err == nil {
			return abs
		}
		return f.Name
	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		if rel, err := filepath.Rel(baseDir, f.Name); err == nil {
			return filepath.ToSlash(rel)
		}
		return f.Name
	case "basename":
		return filepath.Base(f.Name)
	case "auto":
		if len(f.Name) < 40 || !filepath.IsAbs(f.Name) {
			return f.Name
		}
		return filepath.Base(f.Name)
	default:
		return f.Name
	}
}

func safeUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return maxUint32
	}
	return v
}

// MustUint32 converts an int offset, panicking on overflow.
func MustUint32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("offset overflow: %w", err))
	}
	return v
}
