package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFile_OffsetAndPositionRoundTrip(t *testing.T) {
	f := NewVirtualFile("main.go", []byte("one\ntwo\nthree"))
	tests := []struct {
		pos    Position
		offset uint32
	}{
		{Position{Line: 0, Character: 0}, 0},
		{Position{Line: 0, Character: 3}, 3},
		{Position{Line: 1, Character: 0}, 4},
		{Position{Line: 1, Character: 2}, 6},
		{Position{Line: 2, Character: 5}, 13},
	}
	for _, tt := range tests {
		if got := f.OffsetOf(tt.pos); got != tt.offset {
			t.Fatalf("OffsetOf(%+v) = %d, want %d", tt.pos, got, tt.offset)
		}
		if got := f.PositionOf(tt.offset); got != tt.pos {
			t.Fatalf("PositionOf(%d) = %+v, want %+v", tt.offset, got, tt.pos)
		}
	}
}

func TestFile_OffsetOfClamps(t *testing.T) {
	f := NewVirtualFile("main.go", []byte("ab\ncd\n"))
	if got := f.OffsetOf(Position{Line: 0, Character: 40}); got != 2 {
		t.Fatalf("expected clamp to line end, got %d", got)
	}
	if got := f.OffsetOf(Position{Line: 9, Character: 0}); got != f.Len() {
		t.Fatalf("expected clamp to content length, got %d", got)
	}
}

func TestFile_OffsetOfUTF16(t *testing.T) {
	// "😀" is two UTF-16 units and four bytes.
	f := NewVirtualFile("emoji.txt", []byte("a😀b"))
	if got := f.OffsetOf(Position{Line: 0, Character: 3}); got != 5 {
		t.Fatalf("expected offset 5 after surrogate pair, got %d", got)
	}
	if got := f.PositionOf(5); got.Character != 3 {
		t.Fatalf("expected character 3, got %d", got.Character)
	}
}

func TestFile_ResolveAndGetLine(t *testing.T) {
	f := NewVirtualFile("main.go", []byte("abc\ndef\n"))
	start, end := f.Resolve(Span{Start: 5, End: 7})
	if start != (LineCol{Line: 2, Col: 2}) || end != (LineCol{Line: 2, Col: 4}) {
		t.Fatalf("unexpected resolve: %+v %+v", start, end)
	}
	if got := f.GetLine(2); got != "def" {
		t.Fatalf("GetLine(2) = %q", got)
	}
	if got := f.GetLine(9); got != "" {
		t.Fatalf("GetLine(9) = %q, want empty", got)
	}
}

func TestLoadNormalizesCRLFAndBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crlf.txt")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFa\r\nb\r\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(f.Content) != "a\nb\n" {
		t.Fatalf("unexpected content %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected BOM and CRLF flags, got %b", f.Flags)
	}
	if f.LineCount() != 3 {
		t.Fatalf("expected 3 lines, got %d", f.LineCount())
	}
	if got := f.Encode([]byte("a\nc\n")); string(got) != "\xEF\xBB\xBFa\r\nc\r\n" {
		t.Fatalf("Encode = %q", got)
	}
}

func TestEncodeKeepsPlainFiles(t *testing.T) {
	f := NewVirtualFile("a.txt", []byte("a\n"))
	if got := f.Encode([]byte("a\r\nb\n")); string(got) != "a\r\nb\n" {
		t.Fatalf("Encode = %q", got)
	}
	crlf := NewFile("b.txt", []byte("x\n"), FileNormalizedCRLF)
	if got := crlf.Encode([]byte("x\r\ny\n")); string(got) != "x\r\ny\r\n" {
		t.Fatalf("Encode = %q", got)
	}
}
