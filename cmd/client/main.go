// Package main implements a command line client for the Runic Mailman REST API
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/subcommands"

	"github.com/runic/mailman/pkg/rest/client"
)

var host = flag.String("host", "localhost", "host/IP of Runic Mailman server")
var port = flag.Uint("port", 9090, "HTTP port of Runic Mailman server")
var basePath = flag.String("base", "", "base path the server is mounted under, ie /mailman")
var timeout = flag.Duration("timeout", 30*time.Second, "HTTP request timeout")

// Allow subcommands to accept regular expressions as flags
type regexFlag struct {
	*regexp.Regexp
}

func (r *regexFlag) Defined() bool {
	return r.Regexp != nil
}

func (r *regexFlag) Set(pattern string) error {
	if pattern == "" {
		r.Regexp = nil
		return nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	r.Regexp = re
	return nil
}

func (r *regexFlag) String() string {
	if r.Regexp == nil {
		return ""
	}
	return r.Regexp.String()
}

// regexFlag must implement flag.Value
var _ flag.Value = &regexFlag{}

func main() {
	// Important top-level flags
	subcommands.ImportantFlag("host")
	subcommands.ImportantFlag("port")

	// Setup standard helpers
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	// Setup my commands
	subcommands.Register(&statusCmd{}, "status")
	subcommands.Register(&refreshCmd{}, "status")
	subcommands.Register(&serviceActionCmd{action: "restart"}, "status")
	subcommands.Register(&serviceActionCmd{action: "reload"}, "status")
	subcommands.Register(&activityCmd{}, "status")
	subcommands.Register(&filesCmd{}, "config")
	subcommands.Register(&showCmd{}, "config")
	subcommands.Register(&saveCmd{}, "config")
	subcommands.Register(&wizardCmd{}, "install")

	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	status := subcommands.Execute(ctx)
	stop()
	os.Exit(int(status))
}

func hostPort() string {
	return net.JoinHostPort(*host, strconv.FormatUint(uint64(*port), 10))
}

func baseURL() string {
	base := strings.Trim(*basePath, "/")
	if base == "" {
		return "http://" + hostPort()
	}
	return "http://" + hostPort() + "/" + base
}

func newClient() (*client.Client, error) {
	return client.New(baseURL(), client.WithClientOptsTimeout(*timeout))
}

func fatal(msg string, err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	return subcommands.ExitFailure
}

func usage(msg string) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, msg)
	return subcommands.ExitUsageError
}
