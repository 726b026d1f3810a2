// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tcp

import (
	"github.com/cocowh/simpletcp/core/iface"
	"github.com/cocowh/simpletcp/core/registry"
	"github.com/cocowh/simpletcp/pkg/errors"
)

// Target selects a recipient of Server.Write, either by registry key or by
// connection handle. Both forms may be mixed in one call.
type Target interface {
	resolve(r *registry.Registry) (iface.Connection, error)
}

type keyTarget string

// ByKey targets the registered connection whose key is "address:port".
func ByKey(key string) Target {
	return keyTarget(key)
}

func (k keyTarget) resolve(r *registry.Registry) (iface.Connection, error) {
	e, ok := r.Lookup(string(k))
	if !ok {
		return nil, errors.TargetErrorf(errors.ErrCodeTargetUnknown, "no connection registered under %q", string(k))
	}
	return e.Conn, nil
}

type connTarget struct {
	conn iface.Connection
}

// ByConn targets conn directly, registered or not.
func ByConn(conn iface.Connection) Target {
	return connTarget{conn: conn}
}

func (t connTarget) resolve(*registry.Registry) (iface.Connection, error) {
	if t.conn == nil {
		return nil, errors.TargetErrorf(errors.ErrCodeTargetInvalid, "nil connection target")
	}
	return t.conn, nil
}
