package lab

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// MaxBlocksPerDay is the soft per-submission cap on blocks.
const MaxBlocksPerDay = 2

// Reservation is a lab computer booking for one date and one or two blocks.
type Reservation struct {
	ID              string   `json:"_id,omitempty"`
	ComputerNumber  int      `json:"computerNumber"`
	ReservationDate Date     `json:"reservationDate"`
	TimeBlocks      []Block  `json:"timeBlocks"`
	Status          Status   `json:"status,omitempty"`
	UserType        string   `json:"userType"`
	Purpose         string   `json:"purpose"`
	Software        []string `json:"software,omitempty"`
	UserID          string   `json:"userId,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

// Covers reports whether r holds computer on date during block.
func (r Reservation) Covers(date Date, computer int, block Block) bool {
	if r.ComputerNumber != computer || !r.ReservationDate.Equal(date) {
		return false
	}
	for _, b := range r.TimeBlocks {
		if b == block {
			return true
		}
	}
	return false
}

// listEnvelope covers the shapes the backend uses for lists.
type listEnvelope struct {
	Data         json.RawMessage `json:"data"`
	Reservations json.RawMessage `json:"reservations"`
	Items        json.RawMessage `json:"items"`
}

// lenientReservation defers block decoding so one unknown label does not
// cost the whole entry.
type lenientReservation struct {
	Reservation
	TimeBlocks []json.RawMessage `json:"timeBlocks"`
}

// DecodeList decodes a backend list response, either a bare array or an
// object wrapping it under data, reservations or items. Blocks that do not
// decode are dropped from their reservation, and entries left without blocks
// or that do not decode at all are skipped. affected names every entry that
// lost data, by id or by "#index" when it has none.
func DecodeList(body []byte) (list []Reservation, affected []string, err error) {
	body = bytes.TrimSpace(body)
	raw := body
	if len(body) > 0 && body[0] == '{' {
		var env listEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, nil, fmt.Errorf("failed to decode reservation list: %w", err)
		}
		switch {
		case len(env.Data) > 0:
			raw = env.Data
		case len(env.Reservations) > 0:
			raw = env.Reservations
		case len(env.Items) > 0:
			raw = env.Items
		default:
			return nil, nil, nil
		}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, nil, fmt.Errorf("failed to decode reservation list: %w", err)
	}

	list = make([]Reservation, 0, len(entries))
	for i, entry := range entries {
		r, complete, ok := decodeEntry(entry)
		if !complete {
			affected = append(affected, entryName(entry, i))
		}
		if ok {
			list = append(list, r)
		}
	}
	return list, affected, nil
}

// decodeEntry reports whether every block decoded and whether r is usable.
func decodeEntry(entry json.RawMessage) (r Reservation, complete, ok bool) {
	var lr lenientReservation
	if err := json.Unmarshal(entry, &lr); err != nil {
		return Reservation{}, false, false
	}
	r = lr.Reservation
	r.TimeBlocks = make([]Block, 0, len(lr.TimeBlocks))
	for _, rawBlock := range lr.TimeBlocks {
		var b Block
		if err := json.Unmarshal(rawBlock, &b); err != nil {
			continue
		}
		r.TimeBlocks = append(r.TimeBlocks, b)
	}
	complete = len(r.TimeBlocks) == len(lr.TimeBlocks)
	return r, complete, len(r.TimeBlocks) > 0
}

func entryName(entry json.RawMessage, index int) string {
	var id struct {
		ID string `json:"_id"`
	}
	if json.Unmarshal(entry, &id) == nil && id.ID != "" {
		return id.ID
	}
	return "#" + strconv.Itoa(index)
}

// DecodeReservation reads one reservation, bare or wrapped under "data" or
// "reservation".
func DecodeReservation(body []byte) (Reservation, error) {
	var env struct {
		Data        *Reservation `json:"data"`
		Reservation *Reservation `json:"reservation"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return Reservation{}, fmt.Errorf("failed to decode reservation: %w", err)
	}
	switch {
	case env.Data != nil:
		return *env.Data, nil
	case env.Reservation != nil:
		return *env.Reservation, nil
	}

	var r Reservation
	if err := json.Unmarshal(body, &r); err != nil {
		return Reservation{}, fmt.Errorf("failed to decode reservation: %w", err)
	}
	return r, nil
}

// Options are the configurable lookup lists of the reservation form. An
// empty list accepts any non-empty value.
type Options struct {
	UserTypes []string `json:"userTypes"`
	Purposes  []string `json:"purposes"`
	Software  []string `json:"software"`
}

// Validator checks submissions before they are forwarded to the backend.
type Validator struct {
	roster  *Roster
	options Options
	now     func() time.Time
	loc     *time.Location
}

// NewValidator creates a validator. Today's date is taken in loc; nil means UTC.
func NewValidator(roster *Roster, options Options, loc *time.Location) *Validator {
	if loc == nil {
		loc = time.UTC
	}
	return &Validator{roster: roster, options: options, now: time.Now, loc: loc}
}

// Roster returns the roster the validator checks against.
func (v *Validator) Roster() *Roster { return v.roster }

// Options returns the lookup lists.
func (v *Validator) Options() Options { return v.options }

// Location is the zone "today" is taken in.
func (v *Validator) Location() *time.Location { return v.loc }

// ValidateSubmission checks a new reservation. It enforces the roster, the
// block enumeration, the per-day block cap, no past dates and the lookup
// lists. It does not check for conflicts; the backend owns that.
func (v *Validator) ValidateSubmission(r Reservation) error {
	if !v.roster.Has(r.ComputerNumber) {
		return fmt.Errorf("%w: %d", ErrInvalidComputer, r.ComputerNumber)
	}

	if r.ReservationDate.IsZero() {
		return ErrMissingDate
	}
	today := DateOf(v.now().In(v.loc))
	if r.ReservationDate.Before(today) {
		return fmt.Errorf("%w: %s", ErrPastDate, r.ReservationDate)
	}

	if err := validateBlocks(r.TimeBlocks); err != nil {
		return err
	}

	if r.UserType == "" {
		return fmt.Errorf("%w: userType", ErrMissingField)
	}
	if !allowed(v.options.UserTypes, r.UserType) {
		return fmt.Errorf("%w: userType %q", ErrUnknownOption, r.UserType)
	}
	if r.Purpose == "" {
		return fmt.Errorf("%w: purpose", ErrMissingField)
	}
	if !allowed(v.options.Purposes, r.Purpose) {
		return fmt.Errorf("%w: purpose %q", ErrUnknownOption, r.Purpose)
	}
	for _, sw := range r.Software {
		if !allowed(v.options.Software, sw) {
			return fmt.Errorf("%w: software %q", ErrUnknownOption, sw)
		}
	}
	return nil
}

func validateBlocks(blocks []Block) error {
	if len(blocks) == 0 {
		return ErrNoBlocks
	}
	if len(blocks) > MaxBlocksPerDay {
		return fmt.Errorf("%w: %d selected, max %d", ErrTooManyBlocks, len(blocks), MaxBlocksPerDay)
	}
	seen := make(map[Block]bool, len(blocks))
	for _, b := range blocks {
		if !b.Valid() {
			return fmt.Errorf("%w: %d", ErrInvalidBlock, int(b))
		}
		if seen[b] {
			return fmt.Errorf("%w: %s", ErrDuplicateBlock, b)
		}
		seen[b] = true
	}
	return nil
}

func allowed(list []string, value string) bool {
	if len(list) == 0 {
		return value != ""
	}
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
