package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksumAddress(t *testing.T) {
	// Reference vectors from EIP-55.
	cases := []string{
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
	}
	for _, want := range cases {
		got, err := ChecksumAddress(want)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		// Lower-cased input produces the same checksum casing.
		got, err = ChecksumAddress("0x" + lower(want[2:]))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'F' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func TestChecksumAddress_Rejects(t *testing.T) {
	for _, bad := range []string{"", "0x1234", "0x" + string(make([]byte, 40)), "zz"} {
		_, err := ChecksumAddress(bad)
		assert.Error(t, err, bad)
	}
}
