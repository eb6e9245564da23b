package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gicare/internal/extractor"
	"gicare/internal/repository"
	"gicare/internal/service"
)

// fakeExtractor returns a canned result or error, recording the reference
// date it was handed.
type fakeExtractor struct {
	parsed  extractor.ParsedAppointment
	err     error
	refDate string
}

func (f *fakeExtractor) Extract(ctx context.Context, input, referenceDate string) (extractor.ParsedAppointment, error) {
	f.refDate = referenceDate
	if f.err != nil {
		return extractor.ParsedAppointment{}, f.err
	}
	return f.parsed, nil
}

func TestAddAndWeek(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db)
	svc := service.NewAppointmentService(repository.NewAppointmentRepository(db), nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, user, service.AppointmentInput{
		Title: "Vet checkup", Date: "2024-01-05", Time: "15:00", Location: "Happy Paws Clinic",
	})
	require.NoError(t, err)
	_, err = svc.Add(ctx, user, service.AppointmentInput{
		Title: "Blood panel", Date: "2024-01-05", Time: "09:30",
	})
	require.NoError(t, err)
	// Following Monday, outside the window of 2024-01-03.
	_, err = svc.Add(ctx, user, service.AppointmentInput{
		Title: "Ultrasound", Date: "2024-01-08", Time: "10:00",
	})
	require.NoError(t, err)

	week, err := svc.Week(ctx, user, "2024-01-03")
	require.NoError(t, err)
	require.Len(t, week, 2)
	assert.Equal(t, "Blood panel", week[0].Title, "same-day appointments sort by time")
	assert.Equal(t, "Vet checkup", week[1].Title)
}

func TestAddValidation(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db)
	svc := service.NewAppointmentService(repository.NewAppointmentRepository(db), nil)
	ctx := context.Background()

	cases := []struct {
		name  string
		input service.AppointmentInput
	}{
		{"empty title", service.AppointmentInput{Title: "  ", Date: "2024-01-05", Time: "15:00"}},
		{"bad date", service.AppointmentInput{Title: "Vet", Date: "05.01.2024", Time: "15:00"}},
		{"bad time", service.AppointmentInput{Title: "Vet", Date: "2024-01-05", Time: "3pm"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Add(ctx, user, tc.input)
			assert.Error(t, err)
		})
	}

	week, err := svc.Week(ctx, user, "2024-01-03")
	require.NoError(t, err)
	assert.Empty(t, week, "rejected input must not reach the store")
}

func TestRemoveIsNoOpWhenAbsent(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db)
	svc := service.NewAppointmentService(repository.NewAppointmentRepository(db), nil)
	ctx := context.Background()

	require.NoError(t, svc.Remove(ctx, user, uuid.New()))

	apt, err := svc.Add(ctx, user, service.AppointmentInput{Title: "Vet", Date: "2024-01-05", Time: "15:00"})
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, user, apt.ID))

	week, err := svc.Week(ctx, user, "2024-01-03")
	require.NoError(t, err)
	assert.Empty(t, week)

	// Removing again stays silent.
	require.NoError(t, svc.Remove(ctx, user, apt.ID))
}

func TestAddFromText(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db)
	ctx := context.Background()
	now := time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)

	fake := &fakeExtractor{parsed: extractor.ParsedAppointment{
		Title: "Vet checkup", Date: "2024-01-05", Time: "15:00", Location: "Happy Paws Clinic",
	}}
	svc := service.NewAppointmentService(repository.NewAppointmentRepository(db), fake)

	apt, err := svc.AddFromText(ctx, user, "vet friday at 3pm", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-03", fake.refDate, "extractor receives today as the reference date")
	assert.Equal(t, "Vet checkup", apt.Title)
	assert.Equal(t, "2024-01-05", apt.Date)
	assert.Equal(t, "15:00", apt.Time)
	assert.Equal(t, "Happy Paws Clinic", apt.Location)
	assert.NotEqual(t, uuid.Nil, apt.ID, "stored entity gets a fresh identifier")

	week, err := svc.Week(ctx, user, "2024-01-03")
	require.NoError(t, err)
	assert.Len(t, week, 1)
}

func TestAddFromTextFailureLeavesStoreUntouched(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db)
	ctx := context.Background()
	now := time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)

	fake := &fakeExtractor{err: extractor.ErrUnparsable}
	svc := service.NewAppointmentService(repository.NewAppointmentRepository(db), fake)

	_, err := svc.AddFromText(ctx, user, "gibberish", now)
	require.ErrorIs(t, err, extractor.ErrUnparsable)

	week, err := svc.Week(ctx, user, "2024-01-03")
	require.NoError(t, err)
	assert.Empty(t, week)
}

func TestAddFromTextWithoutExtractor(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db)
	svc := service.NewAppointmentService(repository.NewAppointmentRepository(db), nil)

	_, err := svc.AddFromText(context.Background(), user, "vet friday", time.Now())
	assert.ErrorIs(t, err, extractor.ErrUnparsable)
}
