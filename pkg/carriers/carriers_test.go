package carriers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/railline/pkg/database/databasetest"
	"github.com/travigo/railline/pkg/network"
	"github.com/travigo/railline/pkg/stations"
)

func newRegistry(t *testing.T, cns ...string) (*Registry, *stations.Directory, []uint) {
	t.Helper()
	ctx := context.Background()

	session := databasetest.NewSession(t)
	directory := stations.NewDirectory(session)
	require.NoError(t, directory.EnsureProvisioned(ctx))

	var ids []uint
	for i, cn := range cns {
		var value *string
		if cn != "" {
			value = &cn
		}

		id, err := directory.AddStation(ctx, string(rune('A'+i)), i+1, value)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	return NewRegistry(session), directory, ids
}

func TestAssignToFirstUnassigned(t *testing.T) {
	ctx := context.Background()
	registry, directory, ids := newRegistry(t, "CN001", "", "")

	id, err := registry.AssignToFirstUnassigned(ctx, "CN007")
	require.NoError(t, err)
	assert.Equal(t, ids[1], id)

	b, err := directory.GetStation(ctx, ids[1])
	require.NoError(t, err)
	require.NotNil(t, b.CN)
	assert.Equal(t, "CN007", *b.CN)

	c, err := directory.GetStation(ctx, ids[2])
	require.NoError(t, err)
	assert.Nil(t, c.CN)

	_, err = registry.AssignToFirstUnassigned(ctx, "CN007")
	assert.True(t, errors.Is(err, network.ErrDuplicateCN))

	c, err = directory.GetStation(ctx, ids[2])
	require.NoError(t, err)
	assert.Nil(t, c.CN)
}

func TestAssignToFirstUnassignedNoEligibleStation(t *testing.T) {
	registry, _, _ := newRegistry(t, "CN001", "CN002")

	_, err := registry.AssignToFirstUnassigned(context.Background(), "CN003")
	assert.True(t, errors.Is(err, network.ErrNoEligibleStation))
}

func TestAssignToFirstUnassignedRejectsBlank(t *testing.T) {
	registry, _, _ := newRegistry(t, "")

	_, err := registry.AssignToFirstUnassigned(context.Background(), "  ")
	assert.True(t, errors.Is(err, network.ErrValidation))
}

func TestSetForStationOverwritesWithoutUniquenessCheck(t *testing.T) {
	ctx := context.Background()
	registry, directory, ids := newRegistry(t, "CN001", "CN002")

	require.NoError(t, registry.SetForStation(ctx, ids[1], "CN001"))

	b, err := directory.GetStation(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, "CN001", *b.CN)

	require.NoError(t, registry.SetForStation(ctx, ids[1], ""))
	b, err = directory.GetStation(ctx, ids[1])
	require.NoError(t, err)
	assert.Nil(t, b.CN)

	assert.True(t, errors.Is(registry.SetForStation(ctx, 999, "CN009"), network.ErrNotFound))
}

func TestBulkAssignUnassigned(t *testing.T) {
	ctx := context.Background()
	registry, directory, _ := newRegistry(t, "CN001", "", "", "CN004")

	count, err := registry.BulkAssignUnassigned(ctx, "CN100")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	stations, err := directory.ListStations(ctx)
	require.NoError(t, err)
	for _, station := range stations {
		assert.NotNil(t, station.CN)
	}

	count, err = registry.BulkAssignUnassigned(ctx, "CN200")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestListDistinctCNs(t *testing.T) {
	ctx := context.Background()
	registry, _, _ := newRegistry(t, "CN003", "", "CN001", "CN003")

	cns, err := registry.ListDistinctCNs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"CN001", "CN003"}, cns)
}
