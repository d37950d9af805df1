package dashboard

import "github.com/runic/mailman/pkg/activity"

// Health is the coarse health of a component on the home page.
type Health string

// Component health values.
const (
	HealthGood    Health = "good"
	HealthWarning Health = "warning"
)

// Component is a mail server component summarized on the home page.
type Component struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Uptime string `json:"uptime"`
	Health Health `json:"health"`
}

// MailStats are the traffic figures shown on the home page.
type MailStats struct {
	EmailsProcessed int `json:"emailsProcessed"`
	SpamDetected    int `json:"spamDetected"`
	ActiveUsers     int `json:"activeUsers"`
	DiskUsage       int `json:"diskUsage"` // Percent.
}

// Overview is the home page data.
type Overview struct {
	Components []Component     `json:"components"`
	Stats      MailStats       `json:"stats"`
	Recent     []activity.Item `json:"recent"`
}

// SeedComponents returns the initial home page components.
func SeedComponents() []Component {
	return []Component{
		{"Postfix", StatusRunning, "14d 6h 32m", HealthGood},
		{"Dovecot", StatusRunning, "14d 6h 30m", HealthGood},
		{"Rspamd", StatusRunning, "14d 5h 45m", HealthGood},
		{"ClamAV", StatusRunning, "14d 5h 45m", HealthWarning},
		{"Redis", StatusRunning, "14d 6h 32m", HealthGood},
		{"MariaDB", StatusRunning, "14d 6h 32m", HealthGood},
	}
}

// SeedStats returns the initial mail statistics.
func SeedStats() MailStats {
	return MailStats{EmailsProcessed: 124, SpamDetected: 17, ActiveUsers: 8, DiskUsage: 42}
}
