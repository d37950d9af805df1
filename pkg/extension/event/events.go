// Package event defines the payloads emitted to extensions after dashboard actions complete.
package event

import "time"

// Service action names.
const (
	ActionRestart = "restart"
	ActionReload  = "reload"
)

// Action sources.
const (
	SourceEditor    = "editor"
	SourceDashboard = "dashboard"
)

// ConfigSaved describes a configuration file whose content was replaced.
type ConfigSaved struct {
	Service string
	File    string
	Path    string
	Size    int64
	Time    time.Time
}

// ServiceAction describes a restart or reload of a service.
type ServiceAction struct {
	Service string
	Action  string
	Source  string
	Time    time.Time
}

// StatusRefreshed describes a completed status refresh.
type StatusRefreshed struct {
	Services []string
	Time     time.Time
}
