// Package duid decodes device unique identifiers.
//
// A DUID is reported as underscore-separated hexadecimal 32-bit words.
// Each word holds one or two 16-bit half-words, and each half-word packs
// three symbols of a base-40 ("C40") alphabet in which codes 4-13 are the
// digits 0-9 and codes 14-39 are the letters A-Z.
package duid

import (
	"strconv"
	"strings"

	"github.com/ardnew/usbboot/pkg"
)

// Alphabet layout.
const (
	codeDigit0  = 4  // C40 code of '0'
	codeLetterA = 14 // C40 code of 'A'
	codeMax     = 39 // C40 code of 'Z'
)

const wordSeparator = "_"

// Decode converts a DUID word string to its readable form.
//
// Parsing stops without error at the first segment that is not a
// hexadecimal 32-bit word, optionally with one leading "+"; symbols
// decoded before it are returned. A symbol outside the alphabet fails the
// whole call with pkg.ErrDecode.
func Decode(words string) (string, error) {
	var symbols []int
	for _, seg := range strings.Split(words, wordSeparator) {
		word, err := strconv.ParseUint(strings.TrimPrefix(seg, "+"), 16, 32)
		if err != nil {
			break
		}
		symbols = appendHalfWord(symbols, uint16(word))
		if hi := uint16(word >> 16); hi != 0 {
			symbols = appendHalfWord(symbols, hi)
		}
	}

	var b strings.Builder
	b.Grow(len(symbols))
	for _, code := range symbols {
		c, ok := symbolChar(code)
		if !ok {
			return "", pkg.NewError(pkg.KindDecode, "duid decode",
				"symbol "+strconv.Itoa(code)+" outside alphabet", nil)
		}
		b.WriteByte(c)
	}
	return b.String(), nil
}

// appendHalfWord unpacks the three symbols of hw. The arithmetic is 16-bit
// unsigned, so a zero half-word wraps and yields out-of-range symbols.
func appendHalfWord(symbols []int, hw uint16) []int {
	s0 := (hw - 1) / 1600
	hw -= s0 * 1600
	s1 := (hw - 1) / 40
	hw -= s1 * 40
	s2 := hw - 1
	return append(symbols, int(s0), int(s1), int(s2))
}

// symbolChar maps a C40 code to its character.
func symbolChar(code int) (byte, bool) {
	switch {
	case code >= codeDigit0 && code < codeLetterA:
		return byte('0' + code - codeDigit0), true
	case code >= codeLetterA && code <= codeMax:
		return byte('A' + code - codeLetterA), true
	default:
		return 0, false
	}
}

// charSymbol maps a character to its C40 code. Lowercase letters fold to
// uppercase.
func charSymbol(c byte) (int, bool) {
	switch {
	case c >= 'a' && c <= 'z':
		return charSymbol(c - 'a' + 'A')
	case c >= '0' && c <= '9':
		return codeDigit0 + int(c-'0'), true
	case c >= 'A' && c <= 'Z':
		return codeLetterA + int(c-'A'), true
	default:
		return 0, false
	}
}

// Encode is the inverse of Decode. The length of s must be a multiple of
// three; half-words are packed low half first, two per word.
func Encode(s string) (string, error) {
	if len(s)%3 != 0 {
		return "", pkg.NewError(pkg.KindDecode, "duid encode",
			"length "+strconv.Itoa(len(s))+" is not a multiple of 3", nil)
	}

	halves := make([]uint16, 0, len(s)/3)
	for i := 0; i < len(s); i += 3 {
		var hw uint16
		for j, mul := range [3]uint16{1600, 40, 1} {
			code, ok := charSymbol(s[i+j])
			if !ok {
				return "", pkg.NewError(pkg.KindDecode, "duid encode",
					"character "+strconv.Quote(s[i+j:i+j+1])+" outside alphabet", nil)
			}
			hw += uint16(code) * mul
		}
		halves = append(halves, hw+1)
	}

	words := make([]string, 0, (len(halves)+1)/2)
	for i := 0; i < len(halves); i += 2 {
		word := uint32(halves[i])
		if i+1 < len(halves) {
			word |= uint32(halves[i+1]) << 16
		}
		words = append(words, strconv.FormatUint(uint64(word), 16))
	}
	return strings.Join(words, wordSeparator), nil
}
