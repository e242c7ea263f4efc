package stations

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/railline/pkg/database"
	"github.com/travigo/railline/pkg/database/databasetest"
	"github.com/travigo/railline/pkg/network"
)

func newDirectory(t *testing.T) *Directory {
	t.Helper()

	directory := NewDirectory(databasetest.NewSession(t))
	require.NoError(t, directory.EnsureProvisioned(context.Background()))

	return directory
}

func strPtr(s string) *string {
	return &s
}

func TestAddAndGetStation(t *testing.T) {
	ctx := context.Background()
	directory := newDirectory(t)

	id, err := directory.AddStation(ctx, "  Sopot ", 2, strPtr(" "))
	require.NoError(t, err)

	station, err := directory.GetStation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Sopot", station.Name)
	assert.Equal(t, 2, station.Order)
	assert.Nil(t, station.CN)
	assert.False(t, station.HasCN())
}

func TestAddStationValidation(t *testing.T) {
	ctx := context.Background()
	directory := newDirectory(t)

	_, err := directory.AddStation(ctx, "   ", 1, nil)
	assert.True(t, errors.Is(err, network.ErrValidation))

	_, err = directory.AddStation(ctx, "Tczew", 0, nil)
	assert.True(t, errors.Is(err, network.ErrValidation))

	stations, err := directory.ListStations(ctx)
	require.NoError(t, err)
	assert.Empty(t, stations)
}

func TestGetStationNotFound(t *testing.T) {
	_, err := newDirectory(t).GetStation(context.Background(), 42)
	assert.True(t, errors.Is(err, network.ErrNotFound))
}

func TestListStationsOrderedByOrder(t *testing.T) {
	ctx := context.Background()
	directory := newDirectory(t)

	_, err := directory.AddStation(ctx, "C", 30, nil)
	require.NoError(t, err)
	_, err = directory.AddStation(ctx, "A", 10, strPtr("CN100"))
	require.NoError(t, err)
	_, err = directory.AddStation(ctx, "B", 20, nil)
	require.NoError(t, err)

	stations, err := directory.ListStations(ctx)
	require.NoError(t, err)
	require.Len(t, stations, 3)
	assert.Equal(t, "A", stations[0].Name)
	assert.Equal(t, "CN100", *stations[0].CN)
	assert.Equal(t, "B", stations[1].Name)
	assert.Equal(t, "C", stations[2].Name)

	// Sequence can be ranged again and stopped early
	seen := 0
	for _, err := range directory.Stations(ctx) {
		require.NoError(t, err)
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func TestUpdateStation(t *testing.T) {
	ctx := context.Background()
	directory := newDirectory(t)

	id, err := directory.AddStation(ctx, "Malbork", 8, strPtr("CN008"))
	require.NoError(t, err)

	require.NoError(t, directory.UpdateStation(ctx, id, "Malbork Kaldowo", 9, nil))

	station, err := directory.GetStation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Malbork Kaldowo", station.Name)
	assert.Equal(t, 9, station.Order)
	assert.Nil(t, station.CN)

	err = directory.UpdateStation(ctx, 999, "Nowhere", 1, nil)
	assert.True(t, errors.Is(err, network.ErrNotFound))

	err = directory.UpdateStation(ctx, id, "", 1, nil)
	assert.True(t, errors.Is(err, network.ErrValidation))
}

func TestDeleteStation(t *testing.T) {
	ctx := context.Background()
	directory := newDirectory(t)

	id, err := directory.AddStation(ctx, "Elbląg", 9, nil)
	require.NoError(t, err)

	require.NoError(t, directory.DeleteStation(ctx, id))

	_, err = directory.GetStation(ctx, id)
	assert.True(t, errors.Is(err, network.ErrNotFound))

	assert.True(t, errors.Is(directory.DeleteStation(ctx, id), network.ErrNotFound))
}

func TestDeleteStationRestrictedByRoutes(t *testing.T) {
	ctx := context.Background()
	directory := newDirectory(t)

	from, err := directory.AddStation(ctx, "A", 1, nil)
	require.NoError(t, err)
	to, err := directory.AddStation(ctx, "B", 2, nil)
	require.NoError(t, err)

	db := databasetest.MustDB(t, directory.Session)
	require.NoError(t, db.AutoMigrate(&network.Route{}, &network.Ticket{}))
	require.NoError(t, db.Create(&network.Route{
		FromStationID: from,
		ToStationID:   to,
		DepartureTime: network.NewClockTime(8, 0, 0),
		ArrivalTime:   network.NewClockTime(9, 0, 0),
	}).Error)

	err = directory.DeleteStation(ctx, to)
	assert.True(t, errors.Is(err, network.ErrStationInUse))
	assert.True(t, errors.Is(err, network.ErrValidation))

	_, err = directory.GetStation(ctx, to)
	assert.NoError(t, err)
}

func TestEnsureProvisionedSeedsCarrierNumbersOnce(t *testing.T) {
	ctx := context.Background()
	session := databasetest.NewSession(t)
	db := databasetest.MustDB(t, session)

	// A legacy table without the carrier number column
	require.NoError(t, database.EnsureTable(db, &network.StationBase{}))
	for i := 1; i <= 7; i++ {
		require.NoError(t, db.Create(&network.StationBase{Name: string(rune('A' + i - 1)), Order: i}).Error)
	}

	directory := NewDirectory(session)
	require.NoError(t, directory.EnsureProvisioned(ctx))

	stations, err := directory.ListStations(ctx)
	require.NoError(t, err)
	require.Len(t, stations, 7)
	for i, station := range stations[:5] {
		require.NotNil(t, station.CN)
		assert.Equal(t, SampleCNs[i], *station.CN)
	}
	assert.Nil(t, stations[5].CN)
	assert.Nil(t, stations[6].CN)

	// Clear one and provision again, nothing is re-seeded
	require.NoError(t, db.Model(&network.Station{}).Where("id = ?", stations[0].ID).Update("cn", nil).Error)
	require.NoError(t, directory.EnsureProvisioned(ctx))

	first, err := directory.GetStation(ctx, stations[0].ID)
	require.NoError(t, err)
	assert.Nil(t, first.CN)

	count, err := database.CountRows(db, &network.Station{})
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestEnsureProvisionedSampleLineIsIdempotent(t *testing.T) {
	ctx := context.Background()
	directory := NewDirectory(databasetest.NewSession(t))
	directory.SeedSampleLine = true

	require.NoError(t, directory.EnsureProvisioned(ctx))
	first, err := directory.ListStations(ctx)
	require.NoError(t, err)

	require.NoError(t, directory.EnsureProvisioned(ctx))
	second, err := directory.ListStations(ctx)
	require.NoError(t, err)

	assert.Len(t, first, len(SampleLine))
	assert.Equal(t, first, second)
	assert.Equal(t, "CN001", *first[0].CN)
	assert.Nil(t, first[5].CN)
}

func TestStoreFailureIsNotConnectivity(t *testing.T) {
	// Connected but never provisioned, so the stations table is missing
	directory := NewDirectory(databasetest.NewSession(t))

	_, err := directory.ListStations(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, network.ErrStore))
	assert.False(t, errors.Is(err, network.ErrConnection))

	_, err = directory.GetStation(context.Background(), 1)
	assert.True(t, errors.Is(err, network.ErrStore))
}
