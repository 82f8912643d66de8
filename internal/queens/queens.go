// Package queens solves the color-region queens puzzle on a label grid.
//
// A solution places exactly one queen in every row, every column and every
// color region, with no two queens touching, diagonals included.
package queens

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotSquare is returned for empty or non-square region grids.
var ErrNotSquare = errors.New("region grid is not square")

// Solution is one queen placement.
type Solution struct {
	Columns []int `json:"columns"` // Queen column for each row
}

// Rows renders the placement as strings of 'Q' and '.'.
func (s Solution) Rows() []string {
	n := len(s.Columns)
	rows := make([]string, n)
	for r, c := range s.Columns {
		var b strings.Builder
		b.Grow(n)
		for j := 0; j < n; j++ {
			if j == c {
				b.WriteByte('Q')
			} else {
				b.WriteByte('.')
			}
		}
		rows[r] = b.String()
	}
	return rows
}

// Has reports whether a queen sits at (row, col).
func (s Solution) Has(row, col int) bool {
	return row >= 0 && row < len(s.Columns) && s.Columns[row] == col
}

type solver struct {
	regions   [][]int
	n         int
	limit     int
	cols      []bool
	used      map[int]bool
	placement []int
	solutions []Solution
}

// Solve returns up to limit solutions in row-major search order. A limit of
// zero or less returns every solution.
func Solve(regions [][]int, limit int) ([]Solution, error) {
	n := len(regions)
	if n == 0 {
		return nil, ErrNotSquare
	}
	for i, row := range regions {
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d cells, want %d: %w", i, len(row), n, ErrNotSquare)
		}
	}

	s := &solver{
		regions:   regions,
		n:         n,
		limit:     limit,
		cols:      make([]bool, n),
		used:      make(map[int]bool, n),
		placement: make([]int, n),
	}
	s.place(0)
	return s.solutions, nil
}

func (s *solver) done() bool {
	return s.limit > 0 && len(s.solutions) >= s.limit
}

func (s *solver) place(row int) {
	if s.done() {
		return
	}
	if row == s.n {
		// Every region must hold a queen.
		if len(s.used) == s.n {
			cols := make([]int, s.n)
			copy(cols, s.placement)
			s.solutions = append(s.solutions, Solution{Columns: cols})
		}
		return
	}

	for col := 0; col < s.n; col++ {
		if !s.safe(row, col) {
			continue
		}
		region := s.regions[row][col]
		s.cols[col] = true
		s.used[region] = true
		s.placement[row] = col

		s.place(row + 1)

		s.cols[col] = false
		delete(s.used, region)
		if s.done() {
			return
		}
	}
}

func (s *solver) safe(row, col int) bool {
	if s.cols[col] || s.used[s.regions[row][col]] {
		return false
	}
	// Rows are filled top to bottom, so only the previous row can touch.
	if row > 0 {
		prev := s.placement[row-1]
		if prev >= col-1 && prev <= col+1 {
			return false
		}
	}
	return true
}
