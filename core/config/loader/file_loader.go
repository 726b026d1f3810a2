// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package loader

import (
	"os"

	"github.com/cocowh/simpletcp/core/config/parser"
	"github.com/cocowh/simpletcp/core/iface"
	"github.com/cocowh/simpletcp/pkg/errors"
)

type FileLoader struct {
	path   string
	parser iface.Parser
}

func NewFileLoader(path string) *FileLoader {
	p, ok := parser.ForPath(path)
	if !ok {
		p = parser.NewJSONParser()
	}
	return &FileLoader{
		path:   path,
		parser: p,
	}
}

// Load reads and decodes the file into a nested map.
func (l *FileLoader) Load() (map[string]any, error) {
	b, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError(errors.ErrCodeConfigNotFound, "config file not found").
				WithCause(err).WithContext("config_path", l.path)
		}
		return nil, errors.ConfigError(errors.ErrCodeConfigNotFound, "failed to read config file").
			WithCause(err).WithContext("config_path", l.path)
	}
	configs, err := l.parser.Parse(b)
	if err != nil {
		return nil, errors.ConfigError(errors.ErrCodeConfigParseError, "failed to parse config file").
			WithCause(err).WithContext("config_path", l.path)
	}
	if configs == nil {
		configs = make(map[string]any)
	}
	return configs, nil
}
