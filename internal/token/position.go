// Package token holds source positions shared by trees and diagnostics.
package token

import (
	"fmt"
	"strconv"
	"strings"
)

// Position locates a node in the original source program.
type Position struct {
	File   string
	Line   int
	Column int
}

// IsValid reports whether the position carries a line number.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	switch {
	case !p.IsValid() && p.File == "":
		return "-"
	case !p.IsValid():
		return p.File
	case p.File == "":
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	default:
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
}

// ParsePosition reads "file:line:col", "file:line" or "line:col".
func ParsePosition(s string) (Position, error) {
	parts := strings.Split(s, ":")
	var nums []int
	for len(parts) > 0 && len(nums) < 2 {
		n, err := strconv.Atoi(parts[len(parts)-1])
		if err != nil {
			break
		}
		nums = append([]int{n}, nums...)
		parts = parts[:len(parts)-1]
	}
	if len(nums) == 0 {
		return Position{}, fmt.Errorf("invalid position %q", s)
	}
	pos := Position{File: strings.Join(parts, ":"), Line: nums[0]}
	if len(nums) == 2 {
		pos.Column = nums[1]
	}
	return pos, nil
}
