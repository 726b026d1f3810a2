// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iface

// Parser decodes one configuration file format into a nested map.
type Parser interface {
	Parse(data []byte) (map[string]any, error)
}
