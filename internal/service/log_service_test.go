package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gicare/internal/repository"
	"gicare/internal/service"
)

func TestToggleInvolution(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db)
	svc := service.NewLogService(repository.NewMedLogRepository(db))
	ctx := context.Background()

	const (
		med  = "med-ursodiol"
		date = "2024-01-03"
		dose = "08:00"
	)

	taken, err := svc.IsTaken(ctx, user, med, date, dose)
	require.NoError(t, err)
	assert.False(t, taken)

	now := time.Date(2024, 1, 3, 8, 2, 0, 0, time.UTC)
	created, err := svc.Toggle(ctx, user, med, date, dose, now)
	require.NoError(t, err)
	assert.True(t, created)

	taken, err = svc.IsTaken(ctx, user, med, date, dose)
	require.NoError(t, err)
	assert.True(t, taken)

	// Second toggle removes the record and restores the original state.
	created, err = svc.Toggle(ctx, user, med, date, dose, now)
	require.NoError(t, err)
	assert.False(t, created)

	taken, err = svc.IsTaken(ctx, user, med, date, dose)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestToggleSlotsAreIndependent(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db)
	svc := service.NewLogService(repository.NewMedLogRepository(db))
	ctx := context.Background()
	now := time.Now()

	_, err := svc.Toggle(ctx, user, "med-ursodiol", "2024-01-03", "08:00", now)
	require.NoError(t, err)

	taken, err := svc.IsTaken(ctx, user, "med-ursodiol", "2024-01-03", "20:00")
	require.NoError(t, err)
	assert.False(t, taken, "evening slot must not be affected by the morning toggle")

	taken, err = svc.IsTaken(ctx, user, "med-levetiracetam", "2024-01-03", "08:00")
	require.NoError(t, err)
	assert.False(t, taken, "other medication at the same time must not be affected")
}

func TestWeekGrid(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db)
	svc := service.NewLogService(repository.NewMedLogRepository(db))
	ctx := context.Background()
	now := time.Now()

	// Wednesday 2024-01-03 sits in the window 2024-01-01 … 2024-01-07.
	_, err := svc.Toggle(ctx, user, "med-ursodiol", "2024-01-01", "08:00", now)
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, user, "med-ursodiol", "2024-01-07", "20:00", now)
	require.NoError(t, err)
	// Outside the window; must not show up.
	_, err = svc.Toggle(ctx, user, "med-ursodiol", "2024-01-08", "08:00", now)
	require.NoError(t, err)

	grid, err := svc.WeekGrid(ctx, user, "2024-01-03")
	require.NoError(t, err)

	require.Len(t, grid.Days, 7)
	assert.Equal(t, "2024-01-01", grid.Days[0])
	assert.Equal(t, "2024-01-07", grid.Days[6])

	assert.True(t, grid.Taken("med-ursodiol", "2024-01-01", "08:00"))
	assert.True(t, grid.Taken("med-ursodiol", "2024-01-07", "20:00"))
	assert.False(t, grid.Taken("med-ursodiol", "2024-01-03", "08:00"))
	assert.False(t, grid.Taken("med-ursodiol", "2024-01-08", "08:00"))
}
