package bed

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRegistry_FindAvailablePicksLowestFreeBed(t *testing.T) {
	ctx := context.Background()
	reg := NewMemoryRegistry(nil)
	third := reg.Provision("hospital1", 3)
	first := reg.Provision("hospital1", 1)
	reg.Provision("hospital2", 0)

	got, err := reg.FindAvailable(ctx, "hospital1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	require.NoError(t, reg.Occupy(ctx, first.ID, uuid.New()))

	got, err = reg.FindAvailable(ctx, "hospital1")
	require.NoError(t, err)
	assert.Equal(t, third.ID, got.ID)

	require.NoError(t, reg.Occupy(ctx, third.ID, uuid.New()))

	_, err = reg.FindAvailable(ctx, "hospital1")
	assert.ErrorIs(t, err, ErrNoFreeBed)
}

func TestMemoryRegistry_OccupyIsConditional(t *testing.T) {
	ctx := context.Background()
	reg := NewMemoryRegistry(nil)
	b := reg.Provision("hospital1", 1)
	apptID := uuid.New()

	require.NoError(t, reg.Occupy(ctx, b.ID, apptID))

	err := reg.Occupy(ctx, b.ID, uuid.New())
	assert.ErrorIs(t, err, ErrBedOccupied)

	got, err := reg.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.Occupied)
	require.NotNil(t, got.AppointmentID)
	assert.Equal(t, apptID, *got.AppointmentID)

	assert.ErrorIs(t, reg.Occupy(ctx, uuid.New(), apptID), ErrBedNotFound)
}

func TestMemoryRegistry_Release(t *testing.T) {
	ctx := context.Background()
	reg := NewMemoryRegistry(nil)
	b := reg.Provision("hospital1", 1)
	require.NoError(t, reg.Occupy(ctx, b.ID, uuid.New()))

	require.NoError(t, reg.Release(ctx, b.ID))
	got, err := reg.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, got.Occupied)
	assert.Nil(t, got.AppointmentID)

	// already free
	require.NoError(t, reg.Release(ctx, b.ID))

	assert.ErrorIs(t, reg.Release(ctx, uuid.New()), ErrBedNotFound)
}

func TestMemoryRegistry_ProvisionIsIdempotent(t *testing.T) {
	reg := NewMemoryRegistry(nil)
	a := reg.Provision("hospital1", 1)
	b := reg.Provision("hospital1", 1)
	assert.Equal(t, a.ID, b.ID)
	assert.Len(t, reg.Snapshot(), 1)
}

func TestMemoryRegistry_Listing(t *testing.T) {
	ctx := context.Background()
	reg := NewMemoryRegistry(nil)
	h2 := reg.Provision("hospital2", 1)
	reg.Provision("hospital1", 2)
	h1 := reg.Provision("hospital1", 1)
	require.NoError(t, reg.Occupy(ctx, h2.ID, uuid.New()))
	require.NoError(t, reg.Occupy(ctx, h1.ID, uuid.New()))

	beds, err := reg.ListByHospital(ctx, "hospital1")
	require.NoError(t, err)
	require.Len(t, beds, 2)
	assert.Equal(t, 1, beds[0].BedNumber)
	assert.Equal(t, 2, beds[1].BedNumber)

	occupied, err := reg.ListOccupied(ctx)
	require.NoError(t, err)
	require.Len(t, occupied, 2)
	assert.Equal(t, "hospital1", occupied[0].Hospital)
	assert.Equal(t, "hospital2", occupied[1].Hospital)
}
