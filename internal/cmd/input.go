package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxInputBytes caps markdown and query input read from files or stdin.
const maxInputBytes = 8 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readInputSource reads a file, or stdin when source is "-", and returns
// its text with a leading byte order mark and surrounding whitespace removed.
func readInputSource(source string, stdin io.Reader) (string, error) {
	name := strings.TrimSpace(source)
	if name == "" {
		return "", errors.New("empty input source")
	}

	r := stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", name, err)
		}
		defer f.Close()
		r = f
	} else if r == nil {
		r = os.Stdin
	}

	data, err := io.ReadAll(io.LimitReader(r, maxInputBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	if len(data) > maxInputBytes {
		return "", fmt.Errorf("input %s is larger than %d MiB", name, maxInputBytes>>20)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	return strings.TrimSpace(string(data)), nil
}

// inputHasData reports whether r may carry piped input. Anything other than
// a character device (a terminal) counts.
func inputHasData(r io.Reader) bool {
	if r == nil {
		r = os.Stdin
	}
	f, ok := r.(*os.File)
	if !ok {
		return true
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice == 0
}
