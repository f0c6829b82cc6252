package authorization

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"admin", RoleAdmin},
		{" Operator ", RoleOperator},
		{"SYSTEM", RoleSystem},
		{"root", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRole(tt.in))
		})
	}
	assert.True(t, RoleAdmin.IsAdmin())
	assert.False(t, RoleSystem.IsAdmin())
}
