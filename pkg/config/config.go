package config

import (
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	prefix      = "mailman"
	tableFormat = `Runic Mailman is configured via the environment. The following environment
variables can be used:

KEY	DEFAULT	REQUIRED	DESCRIPTION
{{range .}}{{usage_key .}}	{{usage_default .}}	{{usage_required .}}	{{usage_description .}}
{{end}}`
)

var (
	// Version of this build, set by main
	Version = ""

	// BuildDate for this build, set by main
	BuildDate = ""
)

// Root wraps all other configurations.
type Root struct {
	LogLevel  string `required:"true" default:"info" desc:"debug, info, warn, or error"`
	Web       Web
	Session   Session
	Editor    Editor
	Dashboard Dashboard
	Wizard    Wizard
	Catalog   Catalog
	Lua       Lua
}

// Web contains the HTTP server configuration.
type Web struct {
	Addr            string `required:"true" default:"0.0.0.0:9090" desc:"Web server IP4 host:port"`
	BasePath        string `default:"" desc:"Base path prefix for UI and API URLs"`
	PublicDir       string `default:"" desc:"Override directory for static assets"`
	CookieAuthKey   string `desc:"Session cipher key (text)"`
	CookieSecure    bool   `default:"false" desc:"Only send the session cookie over HTTPS"`
	ActivityHistory int    `required:"true" default:"30" desc:"Activity events remembered"`
}

// Session contains the per-browser state configuration.
type Session struct {
	MaxIdle      time.Duration `required:"true" default:"2h" desc:"Idle time before a session is discarded"`
	ReapInterval time.Duration `required:"true" default:"1m" desc:"Duration between idle session scans"`
	MaxSessions  int           `required:"true" default:"1000" desc:"Live sessions kept, least recently used are dropped beyond this"`
}

// Editor contains the configuration editor timings.
type Editor struct {
	SaveDelay     time.Duration `required:"true" default:"1s" desc:"Simulated save round trip"`
	SuccessWindow time.Duration `required:"true" default:"3s" desc:"How long the saved notice stays visible"`
	RestartDelay  time.Duration `required:"true" default:"2s" desc:"Simulated service restart"`
}

// Dashboard contains the status dashboard timings.
type Dashboard struct {
	RefreshDelay time.Duration `required:"true" default:"1s" desc:"Simulated status refresh"`
}

// Wizard contains the default server details shown by the installation wizard.
type Wizard struct {
	Hostname   string `default:"mailman.example.com" desc:"Default server hostname"`
	IPAddress  string `envconfig:"IP_ADDRESS" default:"192.168.1.100" desc:"Default server IP address"`
	Domain     string `default:"example.com" desc:"Default mail domain"`
	AdminEmail string `envconfig:"ADMIN_EMAIL" default:"admin@example.com" desc:"Default admin email"`
	Password   string `default:"SecurePassword123#" desc:"Default password"`
}

// Catalog contains the configuration file catalogue settings.
type Catalog struct {
	SeedFile string `desc:"YAML file replacing the built-in config file catalogue"`
}

// Lua contains the Lua extension host configuration.
type Lua struct {
	Path string `default:"mailman.lua" desc:"Lua script path"`
}

// Process loads and parses configuration from the environment.
func Process() (*Root, error) {
	c := &Root{}
	err := envconfig.Process(prefix, c)
	return c, err
}

// Usage prints out the envconfig usage to Stderr.
func Usage() {
	tabs := tabwriter.NewWriter(os.Stderr, 1, 0, 4, ' ', 0)
	if err := envconfig.Usagef(prefix, &Root{}, tabs, tableFormat); err != nil {
		log.Fatalf("Unable to parse env config: %v", err)
	}
	tabs.Flush()
}
