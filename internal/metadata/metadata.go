package metadata

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var versionField = regexp.MustCompile(`(?m)^(Version=")[^"]*(")`)

// Field is one key-value pair of a plugin descriptor, in file order.
type Field struct {
	Key   string
	Value string
}

// Patch rewrites the Version="..." field of the descriptor at path, leaving
// every other byte untouched. It reports whether the file content changed.
// A descriptor without a Version field is left as is.
func Patch(path, version string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read metadata file: %w", err)
	}
	updated := versionField.ReplaceAll(data, []byte("${1}"+version+"${2}"))
	if string(updated) == string(data) {
		return false, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat metadata file: %w", err)
	}
	if err := os.WriteFile(path, updated, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("write metadata file: %w", err)
	}
	return true, nil
}

// Read parses the descriptor into ordered fields. Quoted values are unquoted
// and \n escapes expanded; list-literal values are kept verbatim.
func Read(path string) ([]Field, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata file: %w", err)
	}
	var fields []Field
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		fields = append(fields, Field{Key: key, Value: decodeValue(value)})
	}
	return fields, nil
}

// Value returns the named field from parsed descriptor fields, or "".
func Value(fields []Field, key string) string {
	for _, field := range fields {
		if field.Key == key {
			return field.Value
		}
	}
	return ""
}

func decodeValue(raw string) string {
	if strings.HasPrefix(raw, "[") {
		return raw
	}
	if len(raw) >= 2 && strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`) {
		raw = raw[1 : len(raw)-1]
	}
	return strings.ReplaceAll(raw, `\n`, "\n")
}
