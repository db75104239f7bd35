package config

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var yamlLinePattern = regexp.MustCompile(`line (\d+)`)

func decodeYAML(content string) (fileConfig, error) {
	decoder := yaml.NewDecoder(strings.NewReader(content))
	decoder.KnownFields(true)

	var payload fileConfig
	if err := decoder.Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return fileConfig{}, nil
		}
		return fileConfig{}, wrapYAMLDecodeError(err)
	}

	var extra yaml.Node
	err := decoder.Decode(&extra)
	switch {
	case err == nil:
		return fileConfig{}, fmt.Errorf("line %d: multiple YAML documents are not allowed", extra.Line)
	case !errors.Is(err, io.EOF):
		return fileConfig{}, wrapYAMLDecodeError(err)
	}
	return payload, nil
}

func wrapYAMLDecodeError(err error) error {
	if line := yamlErrorLine(err); line > 0 {
		return fmt.Errorf("invalid YAML at line %d: %w", line, err)
	}
	return fmt.Errorf("invalid YAML: %w", err)
}

// yamlErrorLine extracts the first line number from a yaml.v3 error message.
func yamlErrorLine(err error) int {
	match := yamlLinePattern.FindStringSubmatch(err.Error())
	if len(match) != 2 {
		return 0
	}
	line, convErr := strconv.Atoi(match[1])
	if convErr != nil {
		return 0
	}
	return line
}
