package lab

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeAvailability_OccupiedIffApprovedCovers(t *testing.T) {
	from, to := NewDate(2025, 3, 10), NewDate(2025, 3, 14)
	roster := defaultRoster()

	reservations := []Reservation{
		{ID: "r1", ComputerNumber: 1, ReservationDate: NewDate(2025, 3, 10), TimeBlocks: []Block{1, 2}, Status: StatusApproved},
		{ID: "r2", ComputerNumber: 6, ReservationDate: NewDate(2025, 3, 12), TimeBlocks: []Block{6}, Status: StatusApproved},
		{ID: "r3", ComputerNumber: 6, ReservationDate: NewDate(2025, 3, 12), TimeBlocks: []Block{5}, Status: StatusPending},
		{ID: "r4", ComputerNumber: 2, ReservationDate: NewDate(2025, 3, 11), TimeBlocks: []Block{3}, Status: StatusRejected},
		{ID: "r5", ComputerNumber: 9, ReservationDate: NewDate(2025, 3, 14), TimeBlocks: []Block{3, 4}, Status: StatusApproved},
		{ID: "r6", ComputerNumber: 4, ReservationDate: NewDate(2025, 3, 20), TimeBlocks: []Block{1}, Status: StatusApproved},
		{ID: "r7", ComputerNumber: 12, ReservationDate: NewDate(2025, 3, 11), TimeBlocks: []Block{1}, Status: StatusApproved},
		{ID: "r8", ComputerNumber: 3, ReservationDate: NewDate(2025, 3, 13), TimeBlocks: []Block{2}, Status: StatusCancelled},
		{ID: "r9", ComputerNumber: 3, ReservationDate: NewDate(2025, 3, 13), TimeBlocks: []Block{2}, Status: StatusCompleted},
	}

	a, err := ComputeAvailability(from, to, roster, reservations)
	require.NoError(t, err)

	for d := from; !d.After(to); d = d.AddDays(1) {
		for _, c := range roster.Computers() {
			for _, b := range Blocks() {
				covered := false
				for _, r := range reservations {
					if r.Status == StatusApproved && r.Covers(d, c.Number, b) {
						covered = true
						break
					}
				}
				assert.Equal(t, !covered, a.IsAvailable(d, c.Number, b), "%s pc%d %s", d, c.Number, b)
			}
		}
	}
	assert.Equal(t, 5, a.OccupiedCount())
}

func TestComputeAvailability_FirstHolderWins(t *testing.T) {
	day := NewDate(2025, 3, 10)
	a, err := ComputeAvailability(day, day, defaultRoster(), []Reservation{
		{ID: "first", ComputerNumber: 5, ReservationDate: day, TimeBlocks: []Block{2}, Status: StatusApproved},
		{ID: "second", ComputerNumber: 5, ReservationDate: day, TimeBlocks: []Block{2, 3}, Status: StatusApproved},
	})
	require.NoError(t, err)

	id, taken := a.HolderOf(day, 5, 2)
	assert.True(t, taken)
	assert.Equal(t, "first", id)

	id, _ = a.HolderOf(day, 5, 3)
	assert.Equal(t, "second", id)

	assert.Equal(t, []Block{1, 4, 5, 6}, a.FreeBlocks(day, 5))
}

func TestComputeAvailability_OutsideDomainUnavailable(t *testing.T) {
	day := NewDate(2025, 3, 10)
	a, err := ComputeAvailability(day, day, defaultRoster(), nil)
	require.NoError(t, err)

	assert.True(t, a.IsAvailable(day, 1, 1))
	assert.False(t, a.IsAvailable(day.AddDays(1), 1, 1))
	assert.False(t, a.IsAvailable(day, 10, 1))
	assert.False(t, a.IsAvailable(day, 1, 7))
}

func TestComputeAvailability_InvalidRange(t *testing.T) {
	_, err := ComputeAvailability(NewDate(2025, 3, 10), NewDate(2025, 3, 9), defaultRoster(), nil)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestValidateRange(t *testing.T) {
	from := NewDate(2025, 3, 1)
	assert.NoError(t, ValidateRange(from, from, 31))
	assert.NoError(t, ValidateRange(from, NewDate(2025, 3, 31), 31))
	assert.ErrorIs(t, ValidateRange(from, NewDate(2025, 4, 1), 31), ErrInvalidRange)
	assert.ErrorIs(t, ValidateRange(Date{}, from, 31), ErrInvalidRange)
}

func TestAvailability_Days(t *testing.T) {
	day := NewDate(2025, 3, 10)
	roster := NewRoster([]Computer{{Number: 1, Category: CategoryGeneral}})
	a, err := ComputeAvailability(day, day, roster, []Reservation{
		{ID: "r1", ComputerNumber: 1, ReservationDate: day, TimeBlocks: []Block{2}, Status: StatusApproved},
	})
	require.NoError(t, err)

	want := []DayAvailability{{
		Date: day,
		Computers: []ComputerAvailability{{
			Computer: 1,
			Category: CategoryGeneral,
			Blocks: []BlockAvailability{
				{Number: 1, Label: "07:00-08:45", Available: true},
				{Number: 2, Label: "08:45-10:30", Available: false, ReservationID: "r1"},
				{Number: 3, Label: "10:30-12:15", Available: true},
				{Number: 4, Label: "12:15-14:00", Available: true},
				{Number: 5, Label: "14:00-15:45", Available: true},
				{Number: 6, Label: "15:45-17:30", Available: true},
			},
		}},
	}}
	if diff := cmp.Diff(want, a.Days(), cmp.Comparer(func(x, y Date) bool { return x.Equal(y) })); diff != "" {
		t.Errorf("Days() mismatch (-want +got):\n%s", diff)
	}

	out, err := json.Marshal(a)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "2025-03-10", decoded["from"])
	assert.Len(t, decoded["blocks"], BlockCount)
}
