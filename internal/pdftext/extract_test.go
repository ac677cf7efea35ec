package pdftext

import (
	"strings"
	"testing"
)

func TestExtractRejectsNonPDF(t *testing.T) {
	for _, data := range [][]byte{
		nil,
		[]byte("plain text, not a pdf"),
		[]byte("%PDF-1.4 truncated garbage"),
		[]byte("%PDF-1.7\n" + strings.Repeat("x", 512)),
	} {
		if _, err := Extract(data); err == nil {
			t.Errorf("Extract(%.20q) succeeded, want error", data)
		}
	}
}

func TestWordCount(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   \n\t  ", 0},
		{"one", 1},
		{"CS 3430  Data  Structures\nSpring 2025", 6},
	}
	for _, tc := range cases {
		if got := WordCount(tc.text); got != tc.want {
			t.Errorf("WordCount(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}
