package editor

import "strings"

// ValidationError reports a configuration buffer missing a required parameter.  It is advisory:
// the buffer is kept and may be corrected.
type ValidationError struct {
	Service   string
	File      string
	Parameter string
}

func (e *ValidationError) Error() string {
	return "Error: Missing required parameter " + e.Parameter
}

type rule struct {
	service, file string
	needle        string // Substring that must appear in the buffer.
	parameter     string
}

var rules = []rule{
	{"postfix", "main.cf", "smtpd_tls_cert_file=", "smtpd_tls_cert_file"},
	{"dovecot", "dovecot.conf", "protocols =", "protocols"},
}

// Validate checks buffer as the content of file belonging to service.  Files without a rule always
// pass.
func Validate(service, file, buffer string) error {
	for _, r := range rules {
		if r.service == service && r.file == file && !strings.Contains(buffer, r.needle) {
			return &ValidationError{Service: service, File: file, Parameter: r.parameter}
		}
	}
	return nil
}
