package lab

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"mundox-portal-bff/internal/parse"
)

// Block is one of the six fixed 1h45m intervals of a lab day, numbered 1 to 6.
type Block int

// blockBounds holds start and end minutes since midnight for each block.
var blockBounds = [...][2]int{
	{7 * 60, 8*60 + 45},
	{8*60 + 45, 10*60 + 30},
	{10*60 + 30, 12*60 + 15},
	{12*60 + 15, 14 * 60},
	{14 * 60, 15*60 + 45},
	{15*60 + 45, 17*60 + 30},
}

// BlockCount is the number of blocks in a lab day.
const BlockCount = len(blockBounds)

// Blocks returns every block of the day in order.
func Blocks() []Block {
	out := make([]Block, BlockCount)
	for i := range out {
		out[i] = Block(i + 1)
	}
	return out
}

// Valid reports whether b is one of the six blocks.
func (b Block) Valid() bool {
	return b >= 1 && int(b) <= BlockCount
}

// Start returns the block's start time as "HH:MM".
func (b Block) Start() string {
	if !b.Valid() {
		return ""
	}
	return parse.FormatClock(blockBounds[b-1][0])
}

// End returns the block's end time as "HH:MM".
func (b Block) End() string {
	if !b.Valid() {
		return ""
	}
	return parse.FormatClock(blockBounds[b-1][1])
}

// Label renders the block as "07:00-08:45".
func (b Block) Label() string {
	if !b.Valid() {
		return fmt.Sprintf("block(%d)", int(b))
	}
	return b.Start() + "-" + b.End()
}

func (b Block) String() string { return b.Label() }

// BlockFromLabel finds the block whose bounds match a label such as
// "07:00-08:45" or a bare block number such as "3".
func BlockFromLabel(raw string) (Block, error) {
	s := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(s); err == nil {
		if b := Block(n); b.Valid() {
			return b, nil
		}
		return 0, fmt.Errorf("%w: %d", ErrInvalidBlock, n)
	}
	start, end, err := parse.TimeRange(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidBlock, err)
	}
	return blockFromBounds(start, end, raw)
}

func blockFromBounds(start, end int, raw string) (Block, error) {
	for i, bounds := range blockBounds {
		if bounds[0] == start && bounds[1] == end {
			return Block(i + 1), nil
		}
	}
	return 0, fmt.Errorf("%w: %q is not a lab block", ErrInvalidBlock, raw)
}

// MarshalJSON encodes the block as its label.
func (b Block) MarshalJSON() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlock, int(b))
	}
	return json.Marshal(b.Label())
}

// blockObject is the object form some clients send: {"startTime":"07:00","endTime":"08:45"}.
type blockObject struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

// UnmarshalJSON accepts a label, a block number or a start/end object.
func (b *Block) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("%w: empty value", ErrInvalidBlock)
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := BlockFromLabel(s)
		if err != nil {
			return err
		}
		*b = parsed
		return nil
	case '{':
		var obj blockObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		startRaw, endRaw := obj.StartTime, obj.EndTime
		if startRaw == "" {
			startRaw, endRaw = obj.Start, obj.End
		}
		start, err := parse.Clock(startRaw)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidBlock, err)
		}
		end, err := parse.Clock(endRaw)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidBlock, err)
		}
		parsed, err := blockFromBounds(start, end, startRaw+"-"+endRaw)
		if err != nil {
			return err
		}
		*b = parsed
		return nil
	default:
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidBlock, data)
		}
		if !Block(n).Valid() {
			return fmt.Errorf("%w: %d", ErrInvalidBlock, n)
		}
		*b = Block(n)
		return nil
	}
}

// BlockInfo is the catalog view of a block.
type BlockInfo struct {
	Number int    `json:"number"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Label  string `json:"label"`
}

// Catalog lists the six blocks for the front-end.
func Catalog() []BlockInfo {
	out := make([]BlockInfo, 0, BlockCount)
	for _, b := range Blocks() {
		out = append(out, BlockInfo{Number: int(b), Start: b.Start(), End: b.End(), Label: b.Label()})
	}
	return out
}
