package quote

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// FileSource picks quotes from a local file, one quote per line.
type FileSource struct {
	quotes []string
	pick   *picker
}

// LoadFile reads quotes from path. Blank lines are skipped.
func LoadFile(path string) (*FileSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only quote file.
			_ = cerr
		}
	}()

	var quotes []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		quotes = append(quotes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("quote file is empty")
	}
	return &FileSource{quotes: quotes, pick: newPicker()}, nil
}

// Quote implements Source.
func (s *FileSource) Quote(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.quotes[s.pick.intn(len(s.quotes))], nil
}

// Len returns the number of loaded quotes.
func (s *FileSource) Len() int { return len(s.quotes) }
