package scoreboard

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Team", "Score", "Overs"}
	rows := [][]string{
		{"Lions", "112/4", "12.0"},
		{"Tigers XI", "98/10", "9.3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Team       Score  Overs" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Lions      112/4   12.0" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Tigers XI  98/10    9.3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Team", "R"}, [][]string{{"東京", "1"}, {"Pune", "22"}}, map[int]bool{1: true})
	if lines[1] != "東京   1" {
		t.Fatalf("unexpected wide-rune row: %q", lines[1])
	}
	if lines[2] != "Pune  22" {
		t.Fatalf("unexpected row: %q", lines[2])
	}
}
