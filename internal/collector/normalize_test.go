package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"João da Silva", "JOAO DA SILVA"},
		{"MARIA-JOSÉ", "MARIAJOSE"},
		{"Ângelo Coronel", "ANGELO CORONEL"},
		{"  padded  ", "PADDED"},
		{"Dr. Luizinho Jr.", "DR LUIZINHO JR"},
		{"", ""},
		{"123", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeName(tt.in), "input %q", tt.in)
	}
}
