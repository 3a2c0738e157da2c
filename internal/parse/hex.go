package parse

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	hexRe       = regexp.MustCompile(`^[0-9A-F]{8,32}$`)
	hexStripper = strings.NewReplacer(" ", "", ":", "", "-", "")
)

// HexTag normalizes an RFID tag value: separators removed, upper case, an
// optional 0x prefix dropped. Tags are 8 to 32 hex digits.
func HexTag(raw string) (string, error) {
	s := strings.ToUpper(hexStripper.Replace(strings.TrimSpace(raw)))
	s = strings.TrimPrefix(s, "0X")
	if !hexRe.MatchString(s) {
		return "", fmt.Errorf("invalid RFID tag: %q", raw)
	}
	return s, nil
}
