// Package wizard implements the installation wizard: a fixed, linear sequence of setup steps and
// the shell commands each step asks the administrator to run.
package wizard

// StepKind identifies one of the fixed installation steps.
type StepKind int

// Installation steps, in wizard order.
const (
	Requirements StepKind = iota
	Database
	Redis
	Postfix
	Dovecot
	ClamAV
	Rspamd
	Apache
	SSL
	Fail2ban
	MailUser
	Complete
)

// StepCount is the number of wizard steps.
const StepCount = int(Complete) + 1

// Step describes a wizard step.
type Step struct {
	Kind        StepKind
	ID          string
	Title       string
	Description string
	Icon        string // Icon class name used by the web UI.
}

var steps = [StepCount]Step{
	{Requirements, "requirements", "System Requirements",
		"Verify your system meets the requirements for Runic Mailman", "server"},
	{Database, "database", "Database Setup",
		"Set up MariaDB database for mail server components", "database"},
	{Redis, "redis", "Redis Setup",
		"Install and configure Redis for caching and data storage", "database"},
	{Postfix, "postfix", "Postfix Setup",
		"Configure Postfix as your Mail Transfer Agent (MTA)", "mail"},
	{Dovecot, "dovecot", "Dovecot Setup",
		"Set up Dovecot for IMAP/POP3 mail access", "mail"},
	{ClamAV, "clamav", "ClamAV Setup",
		"Install ClamAV for antivirus protection", "shield"},
	{Rspamd, "rspamd", "Rspamd Setup",
		"Configure Rspamd for spam filtering", "shield"},
	{Apache, "apache", "Apache Setup",
		"Set up Apache web server for web interfaces", "globe"},
	{SSL, "ssl", "SSL Certificates",
		"Generate and configure SSL certificates", "lock"},
	{Fail2ban, "fail2ban", "Fail2ban Setup",
		"Configure Fail2ban for security", "shield"},
	{MailUser, "user", "Create Mail User",
		"Create your first mail user", "file-code"},
	{Complete, "complete", "Complete",
		"Installation complete!", "check-circle"},
}

// Steps returns the wizard steps in order.
func Steps() []Step {
	s := make([]Step, StepCount)
	copy(s, steps[:])
	return s
}

// StepAt returns the step with the given index, ok is false when out of range.
func StepAt(i int) (s Step, ok bool) {
	if i < 0 || i >= StepCount {
		return Step{}, false
	}
	return steps[i], true
}

// String returns the step id.
func (k StepKind) String() string {
	if s, ok := StepAt(int(k)); ok {
		return s.ID
	}
	return "unknown"
}
