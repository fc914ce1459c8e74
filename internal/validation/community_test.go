package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCommunitySlug(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		slug    string
		wantErr bool
	}{
		{"Valid", "maple-street", false},
		{"Valid Numeric", "block-42", false},
		{"Too Short", "ab", true},
		{"Too Long", "this-community-name-is-way-too-long", true},
		{"Uppercase", "MapleStreet", true},
		{"Leading Hyphen", "-maple", true},
		{"Trailing Hyphen", "maple-", true},
		{"Reserved", "admin", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCommunitySlug(tt.slug)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
