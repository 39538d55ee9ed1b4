package jsonio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// ErrInvalidJSON is returned for files whose content is not valid JSON
var ErrInvalidJSON = errors.New("invalid JSON")

var prettyOptions = &pretty.Options{
	Width:    80,
	Prefix:   "",
	Indent:   "  ",
	SortKeys: false,
}

// Exists reports whether path names an existing regular file
func Exists(fs afero.Fs, path string) bool {
	if path == "" {
		return false
	}
	info, err := fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ReadFile decodes a JSON document. A missing file yields an error matching os.ErrNotExist.
func ReadFile(fs afero.Fs, path string) (any, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Decode(data, path)
}

// ReadOptional decodes a JSON document, returning nil without error when the file does not exist
func ReadOptional(fs afero.Fs, path string) (any, error) {
	if path == "" {
		return nil, nil
	}
	value, err := ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return value, err
}

// Decode parses data, naming source in errors
func Decode(data []byte, source string) (any, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w in %s", ErrInvalidJSON, source)
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("%w in %s: %v", ErrInvalidJSON, source, err)
	}
	return value, nil
}

// TopLevelType returns "array", "object" or the gjson type name of a document
func TopLevelType(data []byte) string {
	result := gjson.ParseBytes(data)
	switch {
	case result.IsArray():
		return "array"
	case result.IsObject():
		return "object"
	default:
		return result.Type.String()
	}
}

// Marshal encodes value as indented JSON without HTML escaping
func Marshal(value any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return pretty.PrettyOptions(buf.Bytes(), prettyOptions), nil
}

// WriteFileAtomic writes value to a temporary file next to path and renames it
// into place, so path is either untouched or fully written.
func WriteFileAtomic(fs afero.Fs, path string, value any) error {
	data, err := Marshal(value)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = fs.Remove(tmpName)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := fs.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("failed to set permissions on %s: %w", tmpName, err)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}
