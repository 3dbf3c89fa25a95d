package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const maxLineBytes = 1024 * 1024

// Cursor is a byte offset into the log file.
type Cursor int64

// Filter keeps lines containing every non-empty substring in Match.
type Filter struct {
	Match []string
}

func (f Filter) keep(line string) bool {
	for _, m := range f.Match {
		if m != "" && !strings.Contains(line, m) {
			return false
		}
	}
	return true
}

// Last returns up to limit matching lines from the end of path and the cursor
// at end of file. A missing file yields no lines and a zero cursor.
func Last(path string, limit int, filter Filter) ([]string, Cursor, error) {
	file, size, err := open(path)
	if err != nil || file == nil {
		return nil, 0, err
	}
	defer file.Close()

	if limit <= 0 {
		return nil, Cursor(size), nil
	}

	ring := make([]string, limit)
	count, next := 0, 0
	err = scan(file, func(line string) {
		if !filter.keep(line) {
			return
		}
		ring[next] = line
		next = (next + 1) % limit
		if count < limit {
			count++
		}
	})
	if err != nil {
		return nil, 0, err
	}

	lines := make([]string, 0, count)
	start := 0
	if count == limit {
		start = next
	}
	for i := 0; i < count; i++ {
		lines = append(lines, ring[(start+i)%limit])
	}
	return lines, Cursor(size), nil
}

// Since returns the matching lines appended after cur and the new cursor.
func Since(path string, cur Cursor, filter Filter) ([]string, Cursor, error) {
	file, size, err := open(path)
	if err != nil || file == nil {
		return nil, 0, err
	}
	defer file.Close()

	if int64(cur) > size || cur < 0 {
		cur = 0
	}
	if _, err := file.Seek(int64(cur), io.SeekStart); err != nil {
		return nil, cur, fmt.Errorf("seek log file: %w", err)
	}

	var lines []string
	var consumed int64
	reader := bufio.NewReaderSize(file, 64*1024)
	for {
		chunk, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			// A partial trailing line is picked up on the next call.
			break
		}
		if err != nil {
			return nil, cur, fmt.Errorf("read log file: %w", err)
		}
		consumed += int64(len(chunk))
		line := strings.TrimRight(chunk, "\r\n")
		if filter.keep(line) {
			lines = append(lines, line)
		}
	}
	return lines, cur + Cursor(consumed), nil
}

// Follow polls path every interval from cur and hands each new matching line
// to emit until ctx ends.
func Follow(ctx context.Context, path string, cur Cursor, interval time.Duration, filter Filter, emit func(string)) error {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		lines, next, err := Since(path, cur, filter)
		if err != nil {
			return err
		}
		for _, line := range lines {
			emit(line)
		}
		cur = next

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func open(path string) (*os.File, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		file.Close()
		return nil, 0, fmt.Errorf("log path %q is a directory", path)
	}
	return file, info.Size(), nil
}

func scan(r io.Reader, fn func(string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		fn(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read log file: %w", err)
	}
	return nil
}
