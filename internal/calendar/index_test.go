package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateKey(t *testing.T) {
	tests := []struct {
		in      string
		want    DateKey
		wantErr bool
	}{
		{"2024-2-29", "2024-2-29", false},
		{"2024-02-09", "2024-2-9", false},
		{" 2025-12-31 ", "2025-12-31", false},
		{"2023-2-29", "", true},
		{"2024-13-1", "", true},
		{"2024-0-1", "", true},
		{"2024-1-0", "", true},
		{"2024/1/1", "", true},
		{"", "", true},
		{"a-b-c", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDateKey(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDateKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeyOfNormalizes(t *testing.T) {
	assert.Equal(t, DateKey("2024-3-1"), KeyOf(2024, time.February, 30))
	assert.Equal(t, DateKey("2023-12-31"), KeyOf(2024, time.January, 0))
	assert.Equal(t, DateKey("2024-2-29"), KeyForTime(time.Date(2024, 2, 29, 23, 59, 0, 0, time.Local)))
}

func TestDateKeyTime(t *testing.T) {
	tm, err := DateKey("2024-2-29").Time(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), tm)

	_, err = DateKey("nope").Time(time.UTC)
	assert.Error(t, err)
	assert.False(t, DateKey("2024-2-30").Valid())
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 28, DaysIn(2023, time.February))
	assert.Equal(t, 28, DaysIn(2100, time.February))
	assert.Equal(t, 29, DaysIn(2000, time.February))
	assert.Equal(t, 30, DaysIn(2024, time.April))
	assert.Equal(t, 31, DaysIn(2024, time.December))
}

func TestAddMonthsAndLabels(t *testing.T) {
	y, m := AddMonths(2024, time.January, -1)
	assert.Equal(t, 2023, y)
	assert.Equal(t, time.December, m)

	y, m = AddMonths(2024, time.December, 1)
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.January, m)

	assert.Equal(t, "February 2024", MonthLabel(2024, time.February))
	assert.Equal(t, []int{2021, 2022, 2023, 2024, 2025, 2026, 2027}, YearOptions(2024, 3))
	assert.Equal(t, []int{2024}, YearOptions(2024, -1))
}

func TestIndexRemoveDropsEmptyKeys(t *testing.T) {
	ix := NewIndex()
	ix.Append("2024-1-1", Event{ID: 1, Title: "a"})
	ix.Append("2024-1-2", Event{ID: 2, Title: "b"})
	ix.Append("2024-1-2", Event{ID: 3, Title: "c"})

	key, ok := ix.Remove(1)
	require.True(t, ok)
	assert.Equal(t, DateKey("2024-1-1"), key)
	assert.Equal(t, []DateKey{"2024-1-2"}, ix.Keys())
	assert.Nil(t, ix.Events("2024-1-1"))

	_, ok = ix.Remove(99)
	assert.False(t, ok)

	ix.Remove(2)
	assert.Equal(t, []Event{{ID: 3, Title: "c"}}, ix.Events("2024-1-2"))
	assert.Equal(t, 1, ix.Count())
}

func TestIndexKeyOrderIsFirstInsertion(t *testing.T) {
	ix := NewIndex()
	ix.Append("2024-5-1", Event{ID: 1})
	ix.Append("2024-1-1", Event{ID: 2})
	ix.Append("2024-5-1", Event{ID: 3})

	assert.Equal(t, []DateKey{"2024-5-1", "2024-1-1"}, ix.Keys())

	ix.Remove(1)
	ix.Remove(3)
	ix.Append("2024-5-1", Event{ID: 4})
	assert.Equal(t, []DateKey{"2024-1-1", "2024-5-1"}, ix.Keys())
}

func TestIndexEventsReturnsCopy(t *testing.T) {
	ix := NewIndex()
	ix.Append("2024-1-1", Event{ID: 1, Title: "a"})

	evs := ix.Events("2024-1-1")
	evs[0].Title = "mutated"
	assert.Equal(t, "a", ix.Events("2024-1-1")[0].Title)
}

func TestIndexJSONRoundTripKeepsOrder(t *testing.T) {
	ix := NewIndex()
	ix.Append("2024-12-25", Event{ID: 10, Title: "Dinner", Participants: "family"})
	ix.Append("2024-1-3", Event{ID: 11, Title: "Call", Description: "weekly"})

	data, err := json.Marshal(ix)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"2024-12-25":[{"id":10,"title":"Dinner","participants":"family"}],"2024-1-3":[{"id":11,"title":"Call","description":"weekly"}]}`,
		string(data))

	var back Index
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, ix.Keys(), back.Keys())
	assert.Equal(t, ix.Events("2024-1-3"), back.Events("2024-1-3"))
	assert.Equal(t, int64(11), back.MaxID())
}

func TestIndexUnmarshalCanonicalizesAndDropsEmpty(t *testing.T) {
	var ix Index
	err := json.Unmarshal([]byte(`{"2024-02-09":[{"id":1,"title":"x"}],"2024-2-10":[],"2024-2-9":[{"id":2,"title":"y"}]}`), &ix)
	require.NoError(t, err)

	assert.Equal(t, []DateKey{"2024-2-9"}, ix.Keys())
	assert.Len(t, ix.Events("2024-2-9"), 2)

	var null Index
	require.NoError(t, json.Unmarshal([]byte(`null`), &null))
	assert.Equal(t, 0, null.Len())

	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &null))
}

func TestIndexCloneIsDeep(t *testing.T) {
	ix := NewIndex()
	ix.Append("2024-1-1", Event{ID: 1})
	c := ix.Clone()
	c.Append("2024-1-1", Event{ID: 2})

	assert.Equal(t, 1, ix.Count())
	assert.Equal(t, 2, c.Count())

	key, ev, ok := c.Find(2)
	require.True(t, ok)
	assert.Equal(t, DateKey("2024-1-1"), key)
	assert.Equal(t, int64(2), ev.ID)
}
