package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Maximum line length the scanner will accept. Wide clinical datasets can
// run to tens of thousands of columns, so the cap is generous.
const maxLineBytes = 64 << 20

// LineFunc receives each source line already split into fields. ordinal is
// 1-based and counts the header line; fields is only valid for the duration
// of the call.
type LineFunc func(ordinal int, fields []string) error

// Scan streams r line by line, splits each line on delimiter, and hands the
// fields to fn. The trailing line terminator is stripped before splitting so
// the last field never carries a spurious newline.
//
// A line that does not contain the delimiter at all indicates a malformed
// source (or a wrong delimiter argument) and aborts the scan. No rollback is
// attempted: output written by earlier lines stays in place.
func Scan(ctx context.Context, r io.Reader, delimiter string, fn LineFunc) error {
	if delimiter == "" {
		return fmt.Errorf("scan: delimiter must not be empty")
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	ordinal := 0
	for sc.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		ordinal++
		line := sc.Text()
		line = strings.TrimSuffix(line, "\r")

		if !strings.Contains(line, delimiter) {
			return fmt.Errorf("scan: delimiter %q not found in line %d", delimiter, ordinal)
		}

		if err := fn(ordinal, strings.Split(line, delimiter)); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scan: read line %d: %w", ordinal+1, err)
	}
	return nil
}
