package musixmatch

import "testing"

func TestConvertRichsync_BasicLine(t *testing.T) {
	body := `[{"ts":1.0,"te":3.5,"x":"Hello world","l":[{"c":"Hello ","o":0},{"c":"world","o":0.8}]}]`

	got := ConvertRichsync(body)

	want := "[00:01.00]<00:01.00>Hello <00:01.80>world\n"
	if got != want {
		t.Errorf("ConvertRichsync = %q, want %q", got, want)
	}
}

func TestConvertRichsync_MultipleLines(t *testing.T) {
	body := `[
		{"ts":0.5,"te":2.0,"x":"First","l":[{"c":"First","o":0}]},
		{"ts":65.25,"te":67.0,"x":"Second","l":[{"c":"Sec","o":0},{"c":"ond","o":0.4}]}
	]`

	got := ConvertRichsync(body)

	want := "[00:00.50]<00:00.50>First\n[01:05.25]<01:05.25>Sec<01:05.65>ond\n"
	if got != want {
		t.Errorf("ConvertRichsync = %q, want %q", got, want)
	}
}

func TestConvertRichsync_LineWithoutWords(t *testing.T) {
	body := `[{"ts":2.0,"te":4.0,"x":"No word timing here","l":[]}]`

	got := ConvertRichsync(body)

	want := "[00:02.00]No word timing here\n"
	if got != want {
		t.Errorf("ConvertRichsync = %q, want %q", got, want)
	}
}

func TestConvertRichsync_SkipsEmptyEntries(t *testing.T) {
	body := `[
		{"ts":1.0,"te":2.0,"x":"","l":[]},
		{"ts":3.0,"te":4.0,"x":"Kept","l":[{"c":"Kept","o":0}]}
	]`

	got := ConvertRichsync(body)

	want := "[00:03.00]<00:03.00>Kept\n"
	if got != want {
		t.Errorf("ConvertRichsync = %q, want %q", got, want)
	}
}

func TestConvertRichsync_InvalidJSON(t *testing.T) {
	if got := ConvertRichsync("not json"); got != "" {
		t.Errorf("Expected empty output for invalid body, got %q", got)
	}
}
