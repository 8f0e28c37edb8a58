package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHumanize(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"company_id", "Company ID"},
		{"due-date", "Due date"},
		{"émis_le", "Émis le"},
		{"über_id", "Über ID"},
		{"ñ", "Ñ"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, humanize(tt.key))
		})
	}
}
