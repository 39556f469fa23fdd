// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package config loads data source registrations from YAML files and
// resolves their credential references from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/footanalytics/datasync/internal/catalog"
	"github.com/footanalytics/datasync/internal/connector"
	"github.com/footanalytics/datasync/internal/datasource"
)

const (
	NameField               = "name"
	SystemTypeField         = "systemType"
	SupportedDataTypesField = "supportedDataTypes"
	SyncIntervalField       = "syncInterval"
	CredentialsRefField     = "credentialsRef"

	// defaultSyncInterval applies to registrations that omit syncInterval.
	defaultSyncInterval = time.Hour
)

var (
	// ErrParsing reports failures that occur while decoding registration files.
	ErrParsing = errors.New("error parsing")
)

// Duration decodes Go duration strings ("30m", "1h") from YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}

	if parsed <= 0 {
		return fmt.Errorf("%s must be positive, got %q", SyncIntervalField, raw)
	}

	*d = Duration(parsed)
	return nil
}

// DataTypes decodes a data type list from YAML and validates every entry
// against the catalog.
type DataTypes []catalog.DataType

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *DataTypes) UnmarshalYAML(value *yaml.Node) error {
	var raw []catalog.DataType
	if err := value.Decode(&raw); err != nil {
		return err
	}

	unknown := []string{}
	for _, dataType := range raw {
		if !catalog.IsValid(dataType) {
			unknown = append(unknown, string(dataType))
		}
	}

	if len(unknown) > 0 {
		return fmt.Errorf("unknown data types: %s", strings.Join(unknown, ", "))
	}

	*t = raw
	return nil
}

// Registration declares one data source to synchronize.
type Registration struct {
	Name               string               `json:"name" yaml:"name"`
	SystemType         connector.SystemType `json:"systemType" yaml:"systemType"`
	SupportedDataTypes DataTypes            `json:"supportedDataTypes" yaml:"supportedDataTypes"`
	SyncInterval       Duration             `json:"syncInterval,omitempty" yaml:"syncInterval,omitempty"`
	CredentialsRef     string               `json:"credentialsRef" yaml:"credentialsRef"`
	// Connection carries the non-secret connector keys (endpoints, tenant
	// ids). Secret keys come from the credential store, never from here.
	Connection map[string]string `json:"connection,omitempty" yaml:"connection,omitempty"`
}

// Configuration converts the registration into the aggregate configuration.
func (r *Registration) Configuration() datasource.Configuration {
	return datasource.Configuration{
		SupportedDataTypes: []catalog.DataType(r.SupportedDataTypes),
		SyncInterval:       time.Duration(r.SyncInterval),
	}
}

// NewRegistrationsFromPath parses the file at path and returns the data
// source registrations it contains. It reports failures encountered while
// reading or decoding the data.
func NewRegistrationsFromPath(path string) ([]*Registration, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	registrations := make([]*Registration, 0)

	// Continue parsing until the end of the file.
	for {
		registration := new(Registration)
		err := decoder.Decode(&registration)
		if err != nil {
			// End of file reached, stop parsing.
			if errors.Is(err, io.EOF) {
				break
			}

			return nil, fmt.Errorf("%w %q: %w", ErrParsing, path, err)
		}

		// Skip empty documents.
		if registration == nil {
			continue
		}

		missingFields := []string{}
		if registration.Name == "" {
			missingFields = append(missingFields, NameField)
		}
		if registration.SystemType == "" {
			missingFields = append(missingFields, SystemTypeField)
		}
		if len(registration.SupportedDataTypes) == 0 {
			missingFields = append(missingFields, SupportedDataTypesField)
		}
		if registration.CredentialsRef == "" {
			missingFields = append(missingFields, CredentialsRefField)
		}

		if len(missingFields) > 0 {
			return nil, fmt.Errorf("%w %q: missing required fields: %v", ErrParsing, path, strings.Join(missingFields, ", "))
		}

		if registration.SyncInterval == 0 {
			registration.SyncInterval = Duration(defaultSyncInterval)
		}

		registrations = append(registrations, registration)
	}

	return registrations, nil
}

// NewRegistrationsFromPaths merges the registrations found in every path.
// Registration names must be unique across all files.
func NewRegistrationsFromPaths(paths ...string) ([]*Registration, error) {
	seen := make(map[string]string)
	registrations := make([]*Registration, 0)

	for _, path := range paths {
		fromPath, err := NewRegistrationsFromPath(path)
		if err != nil {
			return nil, err
		}

		for _, registration := range fromPath {
			if previous, ok := seen[registration.Name]; ok {
				return nil, fmt.Errorf("%w %q: registration %q already declared in %q", ErrParsing, path, registration.Name, previous)
			}

			seen[registration.Name] = path
			registrations = append(registrations, registration)
		}
	}

	return registrations, nil
}
