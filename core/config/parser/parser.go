// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package parser decodes configuration files into nested maps.
package parser

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/cocowh/simpletcp/core/iface"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type JSONParser struct{}

func NewJSONParser() *JSONParser {
	return &JSONParser{}
}

func (p *JSONParser) Parse(data []byte) (map[string]any, error) {
	return decode(json.Unmarshal, data)
}

type YAMLParser struct{}

func NewYAMLParser() *YAMLParser {
	return &YAMLParser{}
}

func (p *YAMLParser) Parse(data []byte) (map[string]any, error) {
	return decode(yaml.Unmarshal, data)
}

type TOMLParser struct{}

func NewTOMLParser() *TOMLParser {
	return &TOMLParser{}
}

func (p *TOMLParser) Parse(data []byte) (map[string]any, error) {
	return decode(toml.Unmarshal, data)
}

// decode treats a blank file as an empty configuration.
func decode(unmarshal func([]byte, any) error, data []byte) (map[string]any, error) {
	m := make(map[string]any)
	if len(bytes.TrimSpace(data)) == 0 {
		return m, nil
	}
	if err := unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// ForPath picks a parser from the file extension. Unknown extensions are
// reported as false.
func ForPath(path string) (iface.Parser, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return NewJSONParser(), true
	case ".yaml", ".yml":
		return NewYAMLParser(), true
	case ".toml":
		return NewTOMLParser(), true
	default:
		return nil, false
	}
}
