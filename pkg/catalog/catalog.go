// Package catalog contains the configuration file catalogue shown by the config editor.
package catalog

import (
	"errors"
)

var (
	// ErrNotExist indicates the requested service or file does not exist.
	ErrNotExist = errors.New("config file does not exist")
)

// Service is a mail server component with editable configuration files.
type Service struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// ConfigFile is a named configuration file belonging to a service, unique by (Service, Name).
type ConfigFile struct {
	Service string `json:"service" yaml:"-"`
	Name    string `json:"name" yaml:"name"`
	Path    string `json:"path" yaml:"path"`
	Content string `json:"content" yaml:"content"`
}

// Store is the interface to the config file catalogue.  Services and files are returned in
// catalogue order.
type Store interface {
	Services() []Service
	Service(id string) (Service, error)
	Files(service string) ([]ConfigFile, error)
	File(service, name string) (ConfigFile, error)
	// Update replaces the content of an existing file.
	Update(service, name, content string) error
}
