package identifier_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jaydenmetz/realty-core/modules/registry/domain/identifier"
)

func TestFormatDisplayCode(t *testing.T) {
	cases := []struct {
		entityType identifier.EntityType
		year       int
		seq        int64
		pad        int
		want       string
	}{
		{identifier.EntityEscrow, 2025, 1, 3, "ESC-2025-001"},
		{identifier.EntityListing, 2025, 47, 3, "LST-2025-047"},
		{identifier.EntityClient, 2026, 999, 3, "CLT-2026-999"},
		{identifier.EntityLead, 2026, 1000, 3, "LED-2026-1000"},
		{identifier.EntityAppointment, 2025, 12, 5, "APT-2025-00012"},
	}
	for _, c := range cases {
		t.Run(c.want, func(t *testing.T) {
			require.Equal(t, c.want, identifier.FormatDisplayCode(c.entityType, c.year, c.seq, c.pad))
		})
	}
}

func TestParseEntityType(t *testing.T) {
	et, err := identifier.ParseEntityType("  Escrow ")
	require.NoError(t, err)
	require.Equal(t, identifier.EntityEscrow, et)

	_, err = identifier.ParseEntityType("property")
	require.ErrorIs(t, err, identifier.ErrUnknownEntityType)

	_, err = identifier.ParseEntityType("")
	require.ErrorIs(t, err, identifier.ErrUnknownEntityType)
}

func TestNewGlobalHandlePrefix(t *testing.T) {
	for _, et := range identifier.AllEntityTypes() {
		h := identifier.NewGlobalHandle(et, uuid.New())
		require.True(t, strings.HasPrefix(h, et.HandlePrefix()+"-"), "handle %q must start with the entity prefix", h)
		require.Equal(t, 36, len(h), "handle %q must stay uuid-length", h)
	}
}

func TestNewGlobalHandleDeterministic(t *testing.T) {
	id := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")
	h1 := identifier.NewGlobalHandle(identifier.EntityEscrow, id)
	h2 := identifier.NewGlobalHandle(identifier.EntityEscrow, id)
	require.Equal(t, h1, h2)
	require.Equal(t, "esc-4567-e89b-12d3-a456-426614174000", h1)
}

func TestNewGlobalHandleUniqueness(t *testing.T) {
	const n = 100000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		h := identifier.NewGlobalHandle(identifier.EntityEscrow, uuid.New())
		if _, dup := seen[h]; dup {
			t.Fatalf("duplicate handle after %d allocations: %s", i, h)
		}
		seen[h] = struct{}{}
	}
}

func TestSetIsComplete(t *testing.T) {
	s := identifier.Set{
		LocalSequence: 1,
		DisplayCode:   fmt.Sprintf("ESC-2025-%03d", 1),
		GlobalHandle:  identifier.NewGlobalHandle(identifier.EntityEscrow, uuid.New()),
	}
	require.True(t, s.IsComplete())
	require.False(t, identifier.Set{}.IsComplete())
	require.False(t, identifier.Set{LocalSequence: 1, DisplayCode: "ESC-2025-001"}.IsComplete())
}
