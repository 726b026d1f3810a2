// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package loader

import (
	"os"
	"strings"
)

// EnvLoader maps environment variables onto dotted config keys.
// "server.input_delimiter" with prefix "SIMPLETCP" is read from
// SIMPLETCP_SERVER_INPUT_DELIMITER.
type EnvLoader struct {
	prefix  string
	mapping map[string]string
	lookup  func(string) (string, bool)
}

func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  strings.TrimSuffix(strings.ToUpper(prefix), "_"),
		mapping: make(map[string]string),
		lookup:  os.LookupEnv,
	}
}

// AddMapping binds an extra variable name to a config key.
func (l *EnvLoader) AddMapping(envKey, configKey string) *EnvLoader {
	l.mapping[envKey] = configKey
	return l
}

// EnvName returns the variable consulted for key.
func (l *EnvLoader) EnvName(key string) string {
	name := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if l.prefix == "" {
		return name
	}
	return l.prefix + "_" + name
}

// Load returns the values found for keys. Explicit mappings win over the
// derived names.
func (l *EnvLoader) Load(keys []string) map[string]any {
	out := make(map[string]any)
	for _, key := range keys {
		if v, ok := l.lookup(l.EnvName(key)); ok {
			out[key] = v
		}
	}
	for envKey, configKey := range l.mapping {
		if v, ok := l.lookup(envKey); ok {
			out[configKey] = v
		}
	}
	return out
}
