package cluster

import "unicode/utf8"

// coeng joins a subscript consonant to the preceding base.
const coeng = '\u17D2'

func isConsonant(r rune) bool { return r >= '\u1780' && r <= '\u17A2' }

func isIndependentVowel(r rune) bool { return r >= '\u17A3' && r <= '\u17B3' }

func isDependentVowel(r rune) bool { return r >= '\u17B6' && r <= '\u17C5' }

// isSign covers diacritics that attach to the preceding cluster
// (nikahit, reahmuk, yuukaleapintu, bantoc, robat and friends).
func isSign(r rune) bool {
	return (r >= '\u17C6' && r <= '\u17D1') || r == '\u17D3' || r == '\u17DD' || r == '\u17B4' || r == '\u17B5'
}

func isKhmerDigit(r rune) bool { return r >= '\u17E0' && r <= '\u17E9' }

func isKhmerBase(r rune) bool { return isConsonant(r) || isIndependentVowel(r) }

// splitClusters breaks a run of Khmer letters into character clusters:
// a base letter, any COENG+consonant subscripts, then dependent vowels and signs.
// Runes that cannot start a cluster form a cluster of their own.
func splitClusters(s string) []string {
	var out []string
	for len(s) > 0 {
		n := clusterLen(s)
		out = append(out, s[:n])
		s = s[n:]
	}
	return out
}

func clusterLen(s string) int {
	r, size := utf8.DecodeRuneInString(s)
	if isKhmerDigit(r) {
		i := size
		for i < len(s) {
			r, size = utf8.DecodeRuneInString(s[i:])
			if !isKhmerDigit(r) {
				break
			}
			i += size
		}
		return i
	}
	if !isKhmerBase(r) {
		return size
	}
	i := size
	for i < len(s) {
		r, size = utf8.DecodeRuneInString(s[i:])
		switch {
		case r == coeng:
			next, nsize := utf8.DecodeRuneInString(s[i+size:])
			if !isConsonant(next) {
				return i + size
			}
			i += size + nsize
		case isDependentVowel(r), isSign(r):
			i += size
		default:
			return i
		}
	}
	return i
}

// hasVowel reports whether a cluster carries a dependent vowel.
func hasVowel(c string) bool {
	for _, r := range c {
		if isDependentVowel(r) {
			return true
		}
	}
	return false
}

// isBareConsonant reports whether a cluster is a consonant with only signs attached.
func isBareConsonant(c string) bool {
	r, size := utf8.DecodeRuneInString(c)
	if !isConsonant(r) {
		return false
	}
	for _, r := range c[size:] {
		if !isSign(r) {
			return false
		}
	}
	return true
}

// syllables merges clusters into orthographic syllables: a bare consonant
// following a cluster with a vowel is read as that syllable's final.
func syllables(s string) []string {
	clusters := splitClusters(s)
	out := make([]string, 0, len(clusters))
	for _, c := range clusters {
		if n := len(out); n > 0 && isBareConsonant(c) && hasVowel(out[n-1]) && !endsWithFinal(out[n-1]) {
			out[n-1] += c
			continue
		}
		out = append(out, c)
	}
	return out
}

// endsWithFinal reports whether a syllable already absorbed a final consonant.
func endsWithFinal(syl string) bool {
	last, _ := utf8.DecodeLastRuneInString(syl)
	for last != utf8.RuneError && isSign(last) {
		syl = syl[:len(syl)-utf8.RuneLen(last)]
		last, _ = utf8.DecodeLastRuneInString(syl)
	}
	if !isConsonant(last) {
		return false
	}
	prefix := syl[:len(syl)-utf8.RuneLen(last)]
	p, _ := utf8.DecodeLastRuneInString(prefix)
	return p != coeng && prefix != ""
}
