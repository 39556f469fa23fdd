// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package registry resolves an external system type to a concrete connector
// implementation. Capabilities are still checked at use through the
// connector interfaces, never assumed from the system type.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/footanalytics/datasync/internal/connector"
)

var (
	// ErrUnknownSystemType reports a resolution for an unregistered provider family.
	ErrUnknownSystemType = errors.New("unknown external system type")
	// ErrDuplicateSystemType reports a second factory registration for the same family.
	ErrDuplicateSystemType = errors.New("system type already registered")
)

// Factory builds a fresh connector instance for one provider family.
type Factory func() (connector.Connector, error)

// Registry maps system types to connector factories. Safe for concurrent use.
type Registry struct {
	lock      sync.RWMutex
	factories map[connector.SystemType]Factory
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		factories: make(map[connector.SystemType]Factory),
	}
}

// Register binds factory to systemType.
func (r *Registry) Register(systemType connector.SystemType, factory Factory) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.factories[systemType]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSystemType, systemType)
	}

	r.factories[systemType] = factory
	return nil
}

// Resolve builds a connector for systemType.
func (r *Registry) Resolve(systemType connector.SystemType) (connector.Connector, error) {
	r.lock.RLock()
	factory, ok := r.factories[systemType]
	r.lock.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSystemType, systemType)
	}

	return factory()
}

// SystemTypes returns the registered provider families.
func (r *Registry) SystemTypes() []connector.SystemType {
	r.lock.RLock()
	defer r.lock.RUnlock()

	types := make([]connector.SystemType, 0, len(r.factories))
	for systemType := range r.factories {
		types = append(types, systemType)
	}

	return types
}
