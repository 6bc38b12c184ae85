package selection

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadColumnSet reads a ranked column-restriction file: comma-delimited, one
// candidate column per line, first field the 1-based column ordinal. Lines
// are assumed pre-sorted by descending predictive rank (not verified); only
// the first count lines are consulted.
//
// Every problem here is a fatal configuration error detected before any
// output artifact exists: a non-integer ordinal, an ordinal out of
// [1, columnCount], a collision with the case or outcome column, or a
// duplicate.
func ReadColumnSet(path string, count, columnCount, caseColumn, outcomeColumn int) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open column set: %w", err)
	}
	defer f.Close()

	var (
		out  []int
		seen = make(map[int]struct{}, count)
	)

	sc := bufio.NewScanner(f)
	for line := 1; line <= count && sc.Scan(); line++ {
		fields := strings.Split(strings.TrimSuffix(sc.Text(), "\r"), ",")

		column, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, fmt.Errorf("column %q from line %d of %s is not an integer", fields[0], line, path)
		}
		if column < 1 || column > columnCount {
			return nil, fmt.Errorf("column %d from line %d of %s is out of range, must be between 1 and %d",
				column, line, path, columnCount)
		}
		if column == caseColumn {
			return nil, fmt.Errorf("column %d from line %d of %s is the case column", column, line, path)
		}
		if column == outcomeColumn {
			return nil, fmt.Errorf("column %d from line %d of %s is the outcome column", column, line, path)
		}
		if _, dup := seen[column]; dup {
			return nil, fmt.Errorf("column %d from line %d of %s already appeared", column, line, path)
		}

		seen[column] = struct{}{}
		out = append(out, column)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read column set %s: %w", path, err)
	}
	if len(out) < count {
		return nil, fmt.Errorf("column set %s has %d usable lines, need %d", path, len(out), count)
	}
	return out, nil
}
