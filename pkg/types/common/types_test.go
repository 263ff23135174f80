package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_Validate(t *testing.T) {
	assert.NoError(t, ID("550e8400-e29b-41d4-a716-446655440000").Validate())

	err := ID("").Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")

	err = ID("not-a-uuid").Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ID format")
}

func TestNewID_GeneratesValidUUID(t *testing.T) {
	id := NewID()
	assert.NoError(t, id.Validate())
	assert.NotEqual(t, id, NewID())
}

func TestTimestamp_JSON(t *testing.T) {
	ts := Timestamp(time.Date(2023, 10, 27, 10, 0, 0, 0, time.UTC))
	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2023-10-27T10:00:00Z"`, string(data))

	var back Timestamp
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, time.Time(ts), time.Time(back))

	assert.Error(t, json.Unmarshal([]byte(`"invalid-date"`), &back))
	assert.Error(t, json.Unmarshal([]byte(`12`), &back))
}

func TestPagination(t *testing.T) {
	p := Pagination{Page: 0, PageSize: 0}.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.NoError(t, p.Validate())

	assert.Equal(t, MaxPageSize, Pagination{Page: 2, PageSize: 1000}.Normalize().PageSize)
	assert.Equal(t, 40, Pagination{Page: 3, PageSize: 20}.Offset())
	assert.Error(t, Pagination{Page: 0, PageSize: 10}.Validate())
	assert.Error(t, Pagination{Page: 1, PageSize: 101}.Validate())
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse([]string{"a", "b"}, 45, Pagination{Page: 1, PageSize: 20})
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, int64(45), resp.Total)

	empty := NewPageResponse[string](nil, 0, Pagination{Page: 1, PageSize: 20})
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestAPIResponse(t *testing.T) {
	ok := NewSuccessResponse(map[string]int{"n": 1})
	assert.True(t, ok.Success)
	assert.Nil(t, ok.Error)

	bad := NewErrorResponse("DOC_001", "document not found")
	assert.False(t, bad.Success)
	require.NotNil(t, bad.Error)
	assert.Equal(t, "DOC_001", bad.Error.Code)

	data, err := json.Marshal(bad)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"success":false`)
}

func TestBaseEvent(t *testing.T) {
	e := NewBaseEvent("analysis.completed", "doc-1")
	assert.NotEmpty(t, e.EventID())
	assert.Equal(t, "analysis.completed", e.EventType())
	assert.Equal(t, "doc-1", e.AggregateID())
	assert.WithinDuration(t, time.Now(), e.OccurredAt(), time.Minute)

	var _ DomainEvent = e
}
