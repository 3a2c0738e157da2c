package lab

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlocks_FixedEnumeration(t *testing.T) {
	labels := make([]string, 0, BlockCount)
	for _, b := range Blocks() {
		labels = append(labels, b.Label())
	}
	assert.Equal(t, []string{
		"07:00-08:45",
		"08:45-10:30",
		"10:30-12:15",
		"12:15-14:00",
		"14:00-15:45",
		"15:45-17:30",
	}, labels)

	assert.False(t, Block(0).Valid())
	assert.False(t, Block(7).Valid())
}

func TestBlockFromLabel(t *testing.T) {
	testCases := []struct {
		raw       string
		expected  Block
		expectErr bool
	}{
		{raw: "07:00-08:45", expected: 1},
		{raw: "15:45 - 17:30", expected: 6},
		{raw: "12:15 a 14:00", expected: 4},
		{raw: "3", expected: 3},
		{raw: "7", expectErr: true},
		{raw: "07:00-09:00", expectErr: true},
		{raw: "mañana", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			b, err := BlockFromLabel(tc.raw)
			if tc.expectErr {
				assert.ErrorIs(t, err, ErrInvalidBlock)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, b)
		})
	}
}

func TestBlock_JSON(t *testing.T) {
	var blocks []Block
	err := json.Unmarshal([]byte(`["07:00-08:45", 2, {"startTime":"10:30","endTime":"12:15"}, {"start":"12:15","end":"14:00"}]`), &blocks)
	require.NoError(t, err)
	assert.Equal(t, []Block{1, 2, 3, 4}, blocks)

	out, err := json.Marshal([]Block{5, 6})
	require.NoError(t, err)
	assert.JSONEq(t, `["14:00-15:45","15:45-17:30"]`, string(out))

	var b Block
	assert.ErrorIs(t, json.Unmarshal([]byte(`9`), &b), ErrInvalidBlock)
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"startTime":"07:00","endTime":"07:30"}`), &b), ErrInvalidBlock)

	_, err = json.Marshal(Block(0))
	assert.Error(t, err)
}

func TestDate_JSON(t *testing.T) {
	var r struct {
		D Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2025-03-10T00:00:00.000Z"}`), &r))
	assert.Equal(t, NewDate(2025, 3, 10), r.D)

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2025-03-10"}`, string(out))

	assert.Equal(t, 2, NewDate(2025, 2, 27).DaysUntil(NewDate(2025, 3, 1)))
}
