package parser

import (
	"fmt"
	"regexp"
	"strconv"
)

// Register is one of R0..R7.
type Register struct{ Number int }

var registerPattern = regexp.MustCompile(`(?i)^[rR]([0-7])$`)

// ParseRegister matches text case-insensitively against [rR][0-7].
func ParseRegister(text string) (Register, error) {
	m := registerPattern.FindStringSubmatch(text)
	if m == nil {
		return Register{}, fmt.Errorf("invalid register %q", text)
	}
	n, _ := strconv.Atoi(m[1])
	return Register{Number: n}, nil
}

func (r Register) String() string {
	return fmt.Sprintf("R%d", r.Number)
}
