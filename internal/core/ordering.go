package core

import (
	"sort"
	"strconv"
	"strings"
)

// numericNumber parses a unit number the way display labels do: leading
// integer digits, so "101" is numeric and "COND. AB" is not.
func numericNumber(number string) (int, bool) {
	s := strings.TrimSpace(number)
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, false
	}
	return n, true
}

// DisplayLabel is the unit label used in rankings and report rows:
// "{number} {block}" for numeric unit numbers, the bare number otherwise.
func (u Unit) DisplayLabel() string {
	if _, ok := numericNumber(u.Number); ok {
		return u.Number + " " + u.Block
	}
	return u.Number
}

// CompareUnits defines the canonical unit ordering used in listings and
// reports:
//
//  1. non-numeric numbers sort before numeric ones,
//  2. two non-numeric numbers compare lexicographically,
//  3. numeric numbers group by block (lexicographic),
//  4. within a block, numeric compare on the number.
//
// Returns a negative value when a sorts first, positive when b does.
func CompareUnits(a, b Unit) int {
	na, numA := numericNumber(a.Number)
	nb, numB := numericNumber(b.Number)

	if !numA && numB {
		return -1
	}
	if numA && !numB {
		return 1
	}
	if !numA && !numB {
		return strings.Compare(a.Number, b.Number)
	}
	if a.Block != b.Block {
		return strings.Compare(a.Block, b.Block)
	}
	return na - nb
}

// SortUnits orders units in place by CompareUnits. The sort is stable so
// equal units keep their input order.
func SortUnits(units []Unit) {
	sort.SliceStable(units, func(i, j int) bool {
		return CompareUnits(units[i], units[j]) < 0
	})
}
