package textstat

import (
	"reflect"
	"strings"
	"testing"
)

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		pageCount int
		want      Stats
	}{
		{
			name: "empty text",
			text: "", pageCount: 0,
			want: Stats{Words: 0, Characters: 0, ReadingMinutes: 0, Pages: 0},
		},
		{
			name: "simple sentence",
			text: "Hello world from the report", pageCount: 2,
			want: Stats{Words: 5, Characters: 27, ReadingMinutes: 1, Pages: 2},
		},
		{
			name: "whitespace only",
			text: "   \n\t  ", pageCount: 1,
			want: Stats{Words: 0, Characters: 7, ReadingMinutes: 0, Pages: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(tt.text, tt.pageCount); got != tt.want {
				t.Fatalf("Compute() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReadingTimeIsCeiling(t *testing.T) {
	cases := []struct {
		words int
		want  int
	}{
		{1, 1}, {199, 1}, {200, 1}, {201, 2}, {400, 2}, {401, 3},
	}
	for _, c := range cases {
		text := strings.TrimSpace(strings.Repeat("word ", c.words))
		if got := Compute(text, 1).ReadingMinutes; got != c.want {
			t.Errorf("%d words: reading time = %d, want %d", c.words, got, c.want)
		}
	}
}

func TestExtractKeyInfo(t *testing.T) {
	text := "Contact jane.doe@example.com or visit https://example.com/report. " +
		"Call +1 555 123 4567 before 2024-03-15. " +
		"Backup contact: jane.doe@example.com."

	info := ExtractKeyInfo(text)
	if !reflect.DeepEqual(info.Emails, []string{"jane.doe@example.com"}) {
		t.Errorf("emails = %v", info.Emails)
	}
	if len(info.URLs) != 1 || !strings.HasPrefix(info.URLs[0], "https://example.com/report") {
		t.Errorf("urls = %v", info.URLs)
	}
	if len(info.Phones) == 0 {
		t.Errorf("expected a phone match, got none")
	}
	if len(info.Dates) == 0 || info.Dates[0] != "2024-03-15" {
		t.Errorf("dates = %v", info.Dates)
	}
	if info.Empty() {
		t.Errorf("info should not be empty")
	}
}

func TestExtractKeyInfoDeduplicates(t *testing.T) {
	text := "a@b.io then c@d.io then a@b.io once more"
	info := ExtractKeyInfo(text)
	if !reflect.DeepEqual(info.Emails, []string{"a@b.io", "c@d.io"}) {
		t.Fatalf("expected first-occurrence order without duplicates, got %v", info.Emails)
	}
}

func TestExtractKeyInfoEmpty(t *testing.T) {
	info := ExtractKeyInfo("plain prose with nothing interesting in it")
	if !info.Empty() {
		t.Fatalf("expected no matches, got %+v", info)
	}
}
