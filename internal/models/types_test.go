package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var payload struct {
		Start Date `json:"start"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"start":"2025-01-05"}`), &payload))
	assert.Equal(t, NewDate(2025, time.January, 5), payload.Start)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2025-01-05"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"start":"05/01/2025"}`), &payload))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, 3, 9, 0, 0, 0, 0, time.FixedZone("", 3600))))
	assert.Equal(t, "2025-03-09", d.String())

	require.NoError(t, d.Scan([]byte("2024-12-31T00:00:00Z")))
	assert.Equal(t, "2024-12-31", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())
}

func TestDateMidnight(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	got := NewDate(2025, time.January, 1).Midnight(loc)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, loc), got)
}

func TestOptionalIntUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		want  OptionalInt
		isErr bool
	}{
		{name: "absent", body: `{}`, want: OptionalInt{}},
		{name: "null", body: `{"v":null}`, want: NullInt()},
		{name: "empty string", body: `{"v":""}`, want: NullInt()},
		{name: "number", body: `{"v":7}`, want: SomeInt(7)},
		{name: "numeric string", body: `{"v":"12"}`, want: SomeInt(12)},
		{name: "garbage", body: `{"v":"abc"}`, isErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload struct {
				V OptionalInt `json:"v"`
			}
			err := json.Unmarshal([]byte(tt.body), &payload)
			if tt.isErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, payload.V)
		})
	}
}

func TestOptionalIntPtr(t *testing.T) {
	assert.Nil(t, NullInt().Ptr())
	p := SomeInt(3).Ptr()
	require.NotNil(t, p)
	assert.Equal(t, 3, *p)
}

func TestOptionalStringUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		want  OptionalString
		isErr bool
	}{
		{name: "absent", body: `{}`, want: OptionalString{}},
		{name: "null clears", body: `{"v":null}`, want: NullString()},
		{name: "empty string is a value", body: `{"v":""}`, want: SomeString("")},
		{name: "text", body: `{"v":"rolling restart"}`, want: SomeString("rolling restart")},
		{name: "number", body: `{"v":5}`, isErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload struct {
				V OptionalString `json:"v"`
			}
			err := json.Unmarshal([]byte(tt.body), &payload)
			if tt.isErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, payload.V)
		})
	}
	assert.Nil(t, NullString().Ptr())
}
