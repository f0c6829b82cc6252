package consumer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConsumer(t *testing.T) {
	c, err := NewConsumer("own_1", "web-01", "", map[string]string{"cpu.count": "4"}, []string{"rhel", "jboss", "rhel"})
	require.NoError(t, err)

	_, perr := uuid.Parse(c.UUID())
	assert.NoError(t, perr)
	assert.Equal(t, TypeSystem, c.Type())
	assert.Equal(t, []string{"jboss", "rhel"}, c.InstalledProducts())
	assert.Equal(t, c.UUID(), c.VirtUUID(), "virt uuid falls back to the consumer uuid")

	_, err = NewConsumer("own_1", "x", Type("toaster"), nil, nil)
	assert.ErrorIs(t, err, ErrInvalidType)
	_, err = NewConsumer("own_1", " ", TypeSystem, nil, nil)
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestConsumer_Facts(t *testing.T) {
	c, err := NewConsumer("own_1", "guest", TypeSystem, map[string]string{
		FactVirtUUID:    "vm-1",
		FactVirtIsGuest: "True",
		FactDevSKU:      " dev-sku ",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "vm-1", c.VirtUUID())
	assert.True(t, c.IsGuest())
	assert.Equal(t, "dev-sku", c.DevSKU())

	c.SetFacts(nil)
	assert.False(t, c.IsGuest())
	assert.Empty(t, c.DevSKU())
}

func TestConsumer_SetGuestIDs(t *testing.T) {
	c, err := NewConsumer("own_1", "hv-1", TypeHypervisor, nil, nil)
	require.NoError(t, err)

	added, removed := c.SetGuestIDs([]string{"g1", "g2", "g1", ""})
	assert.Equal(t, []string{"g1", "g2"}, added)
	assert.Empty(t, removed)
	assert.Equal(t, []string{"g1", "g2"}, c.GuestIDs())

	added, removed = c.SetGuestIDs([]string{"g3", "g2"})
	assert.Equal(t, []string{"g3"}, added)
	assert.Equal(t, []string{"g1"}, removed)
	assert.Equal(t, []string{"g3", "g2"}, c.GuestIDs(), "report order is kept")
	assert.True(t, c.HasGuest("g3"))
	assert.False(t, c.HasGuest("g1"))

	added, removed = c.SetGuestIDs([]string{"g3", "g2"})
	assert.Empty(t, added)
	assert.Empty(t, removed)
}

func TestDiffGuestIDs(t *testing.T) {
	added, removed := DiffGuestIDs(nil, nil)
	assert.Empty(t, added)
	assert.Empty(t, removed)

	added, removed = DiffGuestIDs([]string{"a", "b"}, []string{"b", "c", "d"})
	assert.Equal(t, []string{"c", "d"}, added)
	assert.Equal(t, []string{"a"}, removed)
}
