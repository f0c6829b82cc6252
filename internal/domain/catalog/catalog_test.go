package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVirtLimit(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"4", 4, true},
		{" 10 ", 10, true},
		{"unlimited", Unlimited, true},
		{"UNLIMITED", Unlimited, true},
		{"", 0, false},
		{"0", 0, false},
		{"-3", 0, false},
		{"many", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseVirtLimit(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProduct_ExpiresAfter(t *testing.T) {
	day := 24 * time.Hour
	tests := []struct {
		name string
		attr map[string]string
		want time.Duration
	}{
		{"explicit days", map[string]string{AttrExpiresAfter: "7"}, 7 * day},
		{"missing defaults to 90", nil, 90 * day},
		{"garbage defaults to 90", map[string]string{AttrExpiresAfter: "soon"}, 90 * day},
		{"zero defaults to 90", map[string]string{AttrExpiresAfter: "0"}, 90 * day},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProduct("dev-sku", "Dev", tt.attr, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.ExpiresAfter())
		})
	}
}

func TestSubscription(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	t.Run("window", func(t *testing.T) {
		s, err := NewSubscription("own_1", "virt-prod", 4, start, end)
		require.NoError(t, err)
		assert.True(t, s.IsActiveAt(start))
		assert.True(t, s.IsActiveAt(start.AddDate(0, 6, 0)))
		assert.True(t, s.IsActiveAt(end))
		assert.False(t, s.IsActiveAt(start.Add(-time.Second)))
		assert.False(t, s.IsActiveAt(end.Add(time.Second)))
	})

	t.Run("unlimited quantity allowed", func(t *testing.T) {
		s, err := NewSubscription("own_1", "virt-prod", Unlimited, start, end)
		require.NoError(t, err)
		assert.Equal(t, Unlimited, s.Quantity())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := NewSubscription("own_1", "virt-prod", -2, start, end)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		_, err = NewSubscription("own_1", "virt-prod", 1, end, start)
		assert.ErrorIs(t, err, ErrInvalidWindow)
		_, err = NewSubscription("", "virt-prod", 1, start, end)
		assert.ErrorIs(t, err, ErrOwnerIDRequired)
	})
}

func TestNewOwner(t *testing.T) {
	o, err := NewOwner("acme", "")
	require.NoError(t, err)
	assert.Equal(t, "acme", o.DisplayName())
	assert.Contains(t, o.ID(), "own_")

	_, err = NewOwner("  ", "x")
	assert.ErrorIs(t, err, ErrOwnerKeyRequired)
}
