package lab

import (
	"encoding/json"
	"fmt"
)

type slotKey struct {
	date     string
	computer int
	block    Block
}

// Availability is the occupancy grid of the lab over an inclusive date range.
// A (date, computer, block) triple is occupied iff an approved reservation
// covers it.
type Availability struct {
	from     Date
	to       Date
	roster   *Roster
	occupied map[slotKey]string
}

// ValidateRange checks that from <= to and that the range spans at most maxDays days.
func ValidateRange(from, to Date, maxDays int) error {
	if from.IsZero() || to.IsZero() {
		return fmt.Errorf("%w: from and to are required", ErrInvalidRange)
	}
	if to.Before(from) {
		return fmt.Errorf("%w: %s is before %s", ErrInvalidRange, to, from)
	}
	if maxDays > 0 && from.DaysUntil(to)+1 > maxDays {
		return fmt.Errorf("%w: range exceeds %d days", ErrInvalidRange, maxDays)
	}
	return nil
}

// ComputeAvailability marks every (date, computer, block) triple covered by an
// approved reservation as occupied. Reservations in any other status, outside
// the range, or for a computer not in the roster are ignored. When two approved
// reservations cover the same triple the first one keeps it.
func ComputeAvailability(from, to Date, roster *Roster, reservations []Reservation) (*Availability, error) {
	if err := ValidateRange(from, to, 0); err != nil {
		return nil, err
	}

	a := &Availability{
		from:     from,
		to:       to,
		roster:   roster,
		occupied: make(map[slotKey]string),
	}
	for _, r := range reservations {
		if r.Status != StatusApproved {
			continue
		}
		if !roster.Has(r.ComputerNumber) || !a.inRange(r.ReservationDate) {
			continue
		}
		day := r.ReservationDate.String()
		for _, b := range r.TimeBlocks {
			if !b.Valid() {
				continue
			}
			key := slotKey{date: day, computer: r.ComputerNumber, block: b}
			if _, taken := a.occupied[key]; !taken {
				a.occupied[key] = r.ID
			}
		}
	}
	return a, nil
}

func (a *Availability) inRange(d Date) bool {
	return !d.IsZero() && !d.Before(a.from) && !d.After(a.to)
}

// From is the first date of the grid.
func (a *Availability) From() Date { return a.from }

// To is the last date of the grid.
func (a *Availability) To() Date { return a.to }

// IsAvailable reports whether the triple is free. Triples outside the range,
// the roster or the block enumeration are never available.
func (a *Availability) IsAvailable(date Date, computer int, block Block) bool {
	if !a.inRange(date) || !a.roster.Has(computer) || !block.Valid() {
		return false
	}
	_, taken := a.occupied[slotKey{date: date.String(), computer: computer, block: block}]
	return !taken
}

// HolderOf returns the id of the approved reservation occupying the triple.
func (a *Availability) HolderOf(date Date, computer int, block Block) (string, bool) {
	id, taken := a.occupied[slotKey{date: date.String(), computer: computer, block: block}]
	return id, taken
}

// FreeBlocks lists the free blocks of one computer on one date.
func (a *Availability) FreeBlocks(date Date, computer int) []Block {
	var free []Block
	for _, b := range Blocks() {
		if a.IsAvailable(date, computer, b) {
			free = append(free, b)
		}
	}
	return free
}

// OccupiedCount is the number of occupied triples.
func (a *Availability) OccupiedCount() int { return len(a.occupied) }

// BlockAvailability is one cell of the grid.
type BlockAvailability struct {
	Number        int    `json:"number"`
	Label         string `json:"label"`
	Available     bool   `json:"available"`
	ReservationID string `json:"reservationId,omitempty"`
}

// ComputerAvailability is one computer's row for a day.
type ComputerAvailability struct {
	Computer int                 `json:"computer"`
	Category Category            `json:"category"`
	Blocks   []BlockAvailability `json:"blocks"`
}

// DayAvailability is the grid for one date.
type DayAvailability struct {
	Date      Date                   `json:"date"`
	Computers []ComputerAvailability `json:"computers"`
}

// Days expands the grid for rendering.
func (a *Availability) Days() []DayAvailability {
	computers := a.roster.Computers()
	days := make([]DayAvailability, 0, a.from.DaysUntil(a.to)+1)
	for d := a.from; !d.After(a.to); d = d.AddDays(1) {
		day := DayAvailability{Date: d, Computers: make([]ComputerAvailability, 0, len(computers))}
		for _, c := range computers {
			row := ComputerAvailability{Computer: c.Number, Category: c.Category, Blocks: make([]BlockAvailability, 0, BlockCount)}
			for _, b := range Blocks() {
				id, taken := a.HolderOf(d, c.Number, b)
				row.Blocks = append(row.Blocks, BlockAvailability{
					Number:        int(b),
					Label:         b.Label(),
					Available:     !taken,
					ReservationID: id,
				})
			}
			day.Computers = append(day.Computers, row)
		}
		days = append(days, day)
	}
	return days
}

type availabilityJSON struct {
	From   Date              `json:"from"`
	To     Date              `json:"to"`
	Blocks []BlockInfo       `json:"blocks"`
	Days   []DayAvailability `json:"days"`
}

// MarshalJSON renders the full grid.
func (a *Availability) MarshalJSON() ([]byte, error) {
	return json.Marshal(availabilityJSON{
		From:   a.from,
		To:     a.to,
		Blocks: Catalog(),
		Days:   a.Days(),
	})
}
