package core

import "testing"

func TestScreenSetGet(t *testing.T) {
	s := NewScreen(10, 5)

	s.SetColored(3, 2, '#', ColorRed)

	cell := s.GetCell(3, 2)
	if cell.Rune != '#' || cell.Color != ColorRed {
		t.Errorf("GetCell(3,2) = %+v, expected '#' red", cell)
	}

	// Out of bounds writes are ignored, reads return blanks
	s.Set(-1, 0, 'x')
	s.Set(10, 0, 'x')
	s.Set(0, 5, 'x')
	if got := s.GetCell(-1, 0); got.Rune != ' ' {
		t.Errorf("out-of-bounds GetCell = %+v, expected blank", got)
	}
}

func TestScreenClear(t *testing.T) {
	s := NewScreen(4, 2)
	s.SetColored(1, 1, 'o', ColorCyan)
	s.Clear()

	cell := s.GetCell(1, 1)
	if cell.Rune != ' ' || cell.Color != ColorDefault {
		t.Errorf("Clear left cell %+v", cell)
	}
}

func TestScreenResizePreservesContent(t *testing.T) {
	s := NewScreen(6, 3)
	s.DrawText(0, 0, "abc")

	s.Resize(4, 2)
	if s.Width() != 4 || s.Height() != 2 {
		t.Fatalf("Resize dimensions = %dx%d", s.Width(), s.Height())
	}
	if s.GetCell(0, 0).Rune != 'a' || s.GetCell(2, 0).Rune != 'c' {
		t.Errorf("Resize lost content: row %q", s.Row(0))
	}
}

func TestScreenString(t *testing.T) {
	s := NewScreen(3, 2)
	s.DrawText(0, 0, "ab")
	s.DrawText(0, 1, "c")

	want := "ab \nc  "
	if got := s.String(); got != want {
		t.Errorf("String() = %q, expected %q", got, want)
	}
}

func TestScreenDrawTextCentered(t *testing.T) {
	s := NewScreen(8, 1)
	s.DrawTextCentered(0, "hi")
	if s.Row(0) != "   hi   " {
		t.Errorf("Row(0) = %q", s.Row(0))
	}
}
