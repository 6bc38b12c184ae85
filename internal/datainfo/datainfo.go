// Package datainfo computes and carries the two facts about the original data
// file that every other step depends on: its line count (header included) and
// its column count. Counting means a full scan of a potentially huge file, so
// the result is written to a small info blob once and reused, with an optional
// sqlite catalog to skip rescans of unchanged files.
package datainfo

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Info is the precomputed shape of the original data file.
//
// LineCount includes the header line. ColumnCount is taken from the header;
// all other lines are assumed to match it.
type Info struct {
	LineCount   int `json:"line_count"`
	ColumnCount int `json:"column_count"`
}

// Count scans r and returns its line count and the delimiter-separated column
// count of the first line.
func Count(ctx context.Context, r io.Reader, delimiter string) (Info, error) {
	if delimiter == "" {
		return Info{}, fmt.Errorf("count: delimiter must not be empty")
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 64<<20)

	var info Info
	for sc.Scan() {
		select {
		case <-ctx.Done():
			return Info{}, ctx.Err()
		default:
		}

		info.LineCount++
		if info.LineCount == 1 {
			header := strings.TrimSuffix(sc.Text(), "\r")
			info.ColumnCount = strings.Count(header, delimiter) + 1
		}
	}
	if err := sc.Err(); err != nil {
		return Info{}, fmt.Errorf("count: read line %d: %w", info.LineCount+1, err)
	}
	if info.LineCount == 0 {
		return Info{}, fmt.Errorf("count: the file is empty")
	}
	return info, nil
}

// WriteFile writes the info blob as JSON.
func WriteFile(path string, info Info) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write info: %w", err)
	}
	enc := json.NewEncoder(f)
	if err := enc.Encode(info); err != nil {
		_ = f.Close()
		return fmt.Errorf("write info: %w", err)
	}
	return f.Close()
}

// ReadFile loads an info blob and sanity-checks the counts.
func ReadFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("read info: %w", err)
	}
	defer f.Close()

	var info Info
	if err := json.NewDecoder(f).Decode(&info); err != nil {
		return Info{}, fmt.Errorf("decode info %s: %w", path, err)
	}
	if info.LineCount < 1 || info.ColumnCount < 1 {
		return Info{}, fmt.Errorf("info %s has implausible counts: %d lines, %d columns",
			path, info.LineCount, info.ColumnCount)
	}
	return info, nil
}
