// Package dashboard holds the service status board and the home page overview.
package dashboard

// Status is the run state of a service.
type Status string

// Service run states.
const (
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
	StatusError   Status = "error"
)

// Label returns the badge text for s.
func (s Status) Label() string {
	switch s {
	case StatusRunning:
		return "Running"
	case StatusStopped:
		return "Stopped"
	case StatusError:
		return "Error"
	}
	return "Unknown"
}

// Color returns the badge colour class for s.
func (s Status) Color() string {
	switch s {
	case StatusRunning:
		return "bg-green-500"
	case StatusStopped:
		return "bg-yellow-500"
	case StatusError:
		return "bg-red-500"
	}
	return "bg-gray-500"
}

// ServiceStatus is the last known state of a service.
type ServiceStatus struct {
	Name        string `json:"name"`
	Status      Status `json:"status"`
	Uptime      string `json:"uptime"`
	LastChecked string `json:"lastChecked"`
}

// Tooltips for the per-service action buttons.
func (s ServiceStatus) ReloadHint() string    { return "Reload " + s.Name + " configuration" }
func (s ServiceStatus) RestartHint() string   { return "Restart " + s.Name + " service" }
func (s ServiceStatus) ConfigureHint() string { return "Configure " + s.Name }

// SeedStatus returns the initial status board.
func SeedStatus() []ServiceStatus {
	return []ServiceStatus{
		{"Postfix", StatusRunning, "5d 12h 34m", "2 minutes ago"},
		{"Dovecot", StatusRunning, "5d 12h 30m", "2 minutes ago"},
		{"Rspamd", StatusRunning, "3d 7h 12m", "2 minutes ago"},
		{"ClamAV", StatusError, "0d 0h 0m", "5 minutes ago"},
		{"Redis", StatusRunning, "5d 12h 34m", "2 minutes ago"},
		{"MariaDB", StatusRunning, "5d 12h 34m", "2 minutes ago"},
	}
}
