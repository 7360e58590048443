package duid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/usbboot/pkg"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		words string
		want  string
	}{
		// 31*1600 + 29*40 + 22 + 1 = 0xc65f
		{"letters", "c65f", "RPI"},
		// 5*1600 + 6*40 + 7 + 1 = 0x2038
		{"digits", "2038", "123"},
		// 14*1600 + 4*40 + 39 + 1 = 0x5848
		{"mixed", "5848", "A0Z"},
		{"high half-word follows low", "2038c65f", "RPI123"},
		{"multiple words", "c65f_2038_5848", "RPI123A0Z"},
		{"uppercase hex", "C65F", "RPI"},
		{"empty input", "", ""},
		{"leading plus", "+c65f", "RPI"},
		{"plus on later word", "c65f_+2038", "RPI123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.words)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_StopsAtNonHexSegment(t *testing.T) {
	tests := []struct {
		words string
		want  string
	}{
		{"c65f_zz_2038", "RPI"},
		{"c65f_2038_", "RPI123"},
		{"xyz_c65f", ""},
		{"c65f_123456789", "RPI"}, // wider than 32 bits
		{"c65f_+", "RPI"},
		{"c65f_++2038", "RPI"},
		{"c65f_-2038", "RPI"},
	}

	for _, tt := range tests {
		t.Run(tt.words, func(t *testing.T) {
			got, err := Decode(tt.words)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_SymbolOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		words string
	}{
		// Half-word 1 unpacks to symbols 0, 0, 0 which precede the digits.
		{"below digit range", "1"},
		{"zero half-word wraps", "0"},
		// Symbol code 3 in the last position.
		{"code three", "19a4"}, // 4*1600 + 4*40 + 3 + 1
		{"bad high half-word", "00012038"},
		{"bad word after good", "c65f_1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.words)
			require.ErrorIs(t, err, pkg.ErrDecode)
			assert.Empty(t, got)
			assert.Equal(t, pkg.KindDecode, pkg.KindOf(err))
		})
	}
}

func TestAppendHalfWord(t *testing.T) {
	// Half-word value 1: symbol0=0, rem1=1, symbol1=0, rem2=1, symbol2=0.
	assert.Equal(t, []int{0, 0, 0}, appendHalfWord(nil, 1))
	assert.Equal(t, []int{31, 29, 22}, appendHalfWord(nil, 0xc65f))
	assert.Equal(t, []int{39, 39, 39}, appendHalfWord(nil, 64000))
}

func TestEncode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"RPI", "c65f"},
		{"RPI123", "2038c65f"},
		{"rpi123", "2038c65f"},
		{"RPI123A0Z", "2038c65f_5848"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Encode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_Invalid(t *testing.T) {
	_, err := Encode("AB")
	require.ErrorIs(t, err, pkg.ErrDecode)

	_, err = Encode("A-B")
	require.ErrorIs(t, err, pkg.ErrDecode)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, s := range []string{"000", "ZZZ", "9A8B7C", "SERIAL123XYZ"} {
		words, err := Encode(s)
		require.NoError(t, err)
		got, err := Decode(words)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}
