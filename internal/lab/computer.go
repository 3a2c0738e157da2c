package lab

import "sort"

// Category groups lab computers.
type Category string

const (
	CategoryGeneral     Category = "general"
	CategorySpecialized Category = "specialized"
)

// Computer is one numbered lab machine.
type Computer struct {
	Number      int      `json:"number"`
	Category    Category `json:"category"`
	Description string   `json:"description,omitempty"`
}

// Roster is the fixed set of lab computers, ordered by number.
type Roster struct {
	computers []Computer
	byNumber  map[int]Computer
}

// NewRoster builds a roster. Duplicate numbers keep the first entry and
// non-positive numbers are dropped.
func NewRoster(computers []Computer) *Roster {
	r := &Roster{byNumber: make(map[int]Computer, len(computers))}
	for _, c := range computers {
		if c.Number <= 0 {
			continue
		}
		if _, dup := r.byNumber[c.Number]; dup {
			continue
		}
		r.byNumber[c.Number] = c
		r.computers = append(r.computers, c)
	}
	sort.Slice(r.computers, func(i, j int) bool { return r.computers[i].Number < r.computers[j].Number })
	return r
}

// Has reports whether the computer number is in the roster.
func (r *Roster) Has(number int) bool {
	_, ok := r.byNumber[number]
	return ok
}

// Get returns the computer with the given number.
func (r *Roster) Get(number int) (Computer, bool) {
	c, ok := r.byNumber[number]
	return c, ok
}

// Computers returns a copy of the roster.
func (r *Roster) Computers() []Computer {
	out := make([]Computer, len(r.computers))
	copy(out, r.computers)
	return out
}

// Len is the number of computers.
func (r *Roster) Len() int { return len(r.computers) }
