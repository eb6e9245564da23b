package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValid(t *testing.T) {
	parsed, err := Decode(`{"title":"Neurologist","date":"2024-06-04","time":"14:00","location":"Central Hospital"}`)
	require.NoError(t, err)
	assert.Equal(t, "Neurologist", parsed.Title)
	assert.Equal(t, "2024-06-04", parsed.Date)
	assert.Equal(t, "14:00", parsed.Time)
	assert.Equal(t, "Central Hospital", parsed.Location)
}

func TestDecodeFenceWrapped(t *testing.T) {
	raw := "```json\n{\"title\":\"Cardiologist\",\"date\":\"2024-06-07\",\"time\":\"15:00\",\"location\":\"Clinic\"}\n```"
	parsed, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "Cardiologist", parsed.Title)
}

func TestDecodeProseWrapped(t *testing.T) {
	raw := `Here is the appointment you asked for:
{"title":"Checkup","date":"2024-06-10","time":"09:30","location":"Lab"}
Let me know if you need anything else.`
	parsed, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "09:30", parsed.Time)
}

func TestDecodeFailures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty title", `{"title":"","date":"2024-06-04","time":"14:00","location":"Clinic"}`},
		{"whitespace title", `{"title":"   ","date":"2024-06-04","time":"14:00","location":"Clinic"}`},
		{"missing date", `{"title":"Neuro","time":"14:00","location":"Clinic"}`},
		{"missing location", `{"title":"Neuro","date":"2024-06-04","time":"14:00"}`},
		{"bad date format", `{"title":"Neuro","date":"04/06/2024","time":"14:00","location":"Clinic"}`},
		{"bad time format", `{"title":"Neuro","date":"2024-06-04","time":"2pm","location":"Clinic"}`},
		{"no json at all", `sorry, I could not parse that`},
		{"truncated json", `{"title":"Neuro","date":`},
		{"empty string", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnparsable)
		})
	}
}
