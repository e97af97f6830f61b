package khmer

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"no separators", "សាលា", "សាលា"},
		{"embedded", "សាលា\u200bរៀន", "សាលារៀន"},
		{"leading and trailing", "\u200bសាលា\u200b", "សាលា"},
		{"only separators", "\u200b\u200b\u200b", ""},
		{"keeps spaces", "សាលា \u200bរៀន", "សាលា រៀន"},
		{"latin", "hello\u200bworld", "helloworld"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalize_RemovesAllAndIsIdempotent(t *testing.T) {
	inputs := []string{
		"\u200b",
		"ក\u200bខ\u200bគ",
		strings.Repeat("\u200bសៀវភៅ", 50),
		"mixed \u200b text\u200b\u200b",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if strings.ContainsRune(once, ZeroWidthSpace) {
			t.Errorf("Normalize(%q) still contains U+200B", in)
		}
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}

func TestSplitWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"\u200b \u200b", nil},
		{"សាលា\u200bរៀន", []string{"សាលា", "រៀន"}},
		{"  សាលា \u200b\u200b រៀន\t", []string{"សាលា", "រៀន"}},
		{"one", []string{"one"}},
	}
	for _, tc := range tests {
		got := SplitWords(tc.in)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("SplitWords(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank("") {
		t.Error("empty string should be blank")
	}
	if !IsBlank(" \u200b\n\u200b ") {
		t.Error("separator-only string should be blank")
	}
	if IsBlank(" ក ") {
		t.Error("string with a letter should not be blank")
	}
}

func TestIsKhmer(t *testing.T) {
	if !IsKhmer('ក') {
		t.Error("ក should be Khmer")
	}
	if IsKhmer('a') {
		t.Error("a should not be Khmer")
	}
	if IsKhmer(ZeroWidthSpace) {
		t.Error("U+200B should not be Khmer")
	}
}
