package board

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// DefaultMaxResumeBytes bounds how much résumé text is read from a file.
const DefaultMaxResumeBytes int64 = 1 << 20

var ErrResumeTooLarge = errors.New("resume text is too large")

// ReadResumeText reads already extracted plain text. Invalid UTF-8 sequences are replaced.
func ReadResumeText(path string, maxBytes int64) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("resume file is not set")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxResumeBytes
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open resume: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read resume: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%s: %w (limit %d bytes)", path, ErrResumeTooLarge, maxBytes)
	}

	return SanitizeText(string(data)), nil
}

// SanitizeText replaces invalid UTF-8 sequences with the replacement character.
func SanitizeText(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "�")
}
