package cluster

import (
	"context"
	"reflect"
	"testing"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"two words without separator", "សាលារៀន", []string{"សា", "លា", "រៀន"}},
		{"zero width space is ignored", "សាលា\u200bរៀន", []string{"សា", "លា", "រៀន"}},
		{"subscript consonant and final", "ស្រុក", []string{"ស្រុក"}},
		{"final consonants", "ការងារ", []string{"ការ", "ងារ"}},
		{"latin words", "hello, world!", []string{"hello", "world"}},
		{"mixed scripts", "abcសាលា 2025", []string{"abc", "សា", "លា", "2025"}},
		{"khmer punctuation dropped", "សាលា។", []string{"សា", "លា"}},
		{"khmer digits grouped", "១២៣", []string{"១២៣"}},
		{"duplicates kept once", "លាលា", []string{"លា"}},
		{"blank", " \u200b ", nil},
	}

	seg := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := seg.Segment(context.Background(), tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Segment(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSegment_NoZeroWidthSpaceInTokens(t *testing.T) {
	got, err := New().Segment(context.Background(), "\u200bក\u200b\u200bខ\u200b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, tok := range got {
		for _, r := range tok {
			if r == '\u200b' {
				t.Fatalf("token %q contains zero width space", tok)
			}
		}
	}
}

func TestSegment_MinLength(t *testing.T) {
	got, err := New(WithMinLength(2)).Segment(context.Background(), "a bc def")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"bc", "def"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSegment_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Segment(ctx, "សាលា"); err == nil {
		t.Fatal("expected context error")
	}
}

func TestSplitClusters(t *testing.T) {
	got := splitClusters("ស្រុកខ្មែរ")
	want := []string{"ស្រុ", "ក", "ខ្មែ", "រ"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitClusters = %q, want %q", got, want)
	}
}
