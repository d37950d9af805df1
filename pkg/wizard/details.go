package wizard

import (
	"errors"
	"fmt"

	"github.com/runic/mailman/pkg/config"
)

// ErrUnknownField indicates a form field name that is not part of ServerDetails.
var ErrUnknownField = errors.New("unknown server detail field")

// Form field names, matching the inputs of the requirements step.
const (
	FieldHostname   = "hostname"
	FieldIPAddress  = "ipAddress"
	FieldDomain     = "domain"
	FieldAdminEmail = "adminEmail"
	FieldPassword   = "password"
)

// FieldNames lists the ServerDetails form fields in display order.
var FieldNames = []string{FieldHostname, FieldIPAddress, FieldDomain, FieldAdminEmail, FieldPassword}

// ServerDetails holds the administrator supplied values interpolated into step commands.  None of
// the fields are validated.
type ServerDetails struct {
	Hostname   string `json:"hostname"`
	IPAddress  string `json:"ipAddress"`
	Domain     string `json:"domain"`
	AdminEmail string `json:"adminEmail"`
	Password   string `json:"password"`
}

// DefaultServerDetails returns the details configured as wizard defaults.
func DefaultServerDetails(c config.Wizard) ServerDetails {
	return ServerDetails{
		Hostname:   c.Hostname,
		IPAddress:  c.IPAddress,
		Domain:     c.Domain,
		AdminEmail: c.AdminEmail,
		Password:   c.Password,
	}
}

// Set updates the named field.
func (d *ServerDetails) Set(field, value string) error {
	switch field {
	case FieldHostname:
		d.Hostname = value
	case FieldIPAddress:
		d.IPAddress = value
	case FieldDomain:
		d.Domain = value
	case FieldAdminEmail:
		d.AdminEmail = value
	case FieldPassword:
		d.Password = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Get returns the value of the named field.
func (d ServerDetails) Get(field string) (string, error) {
	switch field {
	case FieldHostname:
		return d.Hostname, nil
	case FieldIPAddress:
		return d.IPAddress, nil
	case FieldDomain:
		return d.Domain, nil
	case FieldAdminEmail:
		return d.AdminEmail, nil
	case FieldPassword:
		return d.Password, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
}
