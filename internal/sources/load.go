package sources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Exists reports whether path names a readable regular file.
func Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// LoadJSON decodes and validates a required JSON source.
func LoadJSON(path string, v Validator) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// LoadOptionalJSON is LoadJSON for sources that may be absent. It reports
// found=false, with no error, when the file does not exist.
func LoadOptionalJSON(path string, v Validator) (bool, error) {
	ok, err := Exists(path)
	if err != nil || !ok {
		return false, err
	}
	return true, LoadJSON(path, v)
}

// ReadOptionalText returns the contents of an optional text source.
func ReadOptionalText(path string) (string, bool, error) {
	ok, err := Exists(path)
	if err != nil || !ok {
		return "", false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), true, nil
}
