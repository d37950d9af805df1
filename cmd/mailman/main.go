// main is the Runic Mailman dashboard daemon
package main

import (
	"context"
	"expvar"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/runic/mailman/pkg/config"
	"github.com/runic/mailman/pkg/server"
)

var (
	// version contains the build version number, populated during linking.
	version = "1.0.0"

	// date contains the build date, populated during linking.
	date = "undefined"
)

// shutdownGrace bounds how long Drain may take before the process exits anyway.
const shutdownGrace = 15 * time.Second

func init() {
	started := time.Now()
	expvar.Publish("uptime", expvar.Func(func() any {
		return int64(time.Since(started) / time.Second)
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))
	expvar.Publish("version", expvar.Func(func() any {
		return config.Version
	}))
}

type options struct {
	help    bool
	pidfile string
	logfile string
	logjson bool
}

func parseFlags(fs *flag.FlagSet, args []string) (*options, error) {
	opts := &options{}
	fs.BoolVar(&opts.help, "help", false, "Displays help on flags and env variables.")
	fs.StringVar(&opts.pidfile, "pidfile", "", "Write our PID into the specified file.")
	fs.StringVar(&opts.logfile, "logfile", "stderr", "Write log output to stderr, stdout or a file.")
	fs.BoolVar(&opts.logjson, "logjson", false, "Logs are written in JSON format.")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: mailman [options]")
		fs.PrintDefaults()
	}
	return opts, fs.Parse(args)
}

func main() {
	fs := flag.NewFlagSet("mailman", flag.ExitOnError)
	opts, _ := parseFlags(fs, os.Args[1:])
	if opts.help {
		fs.Usage()
		fmt.Fprintln(os.Stderr, "")
		config.Usage()
		return
	}

	config.Version = version
	config.BuildDate = date
	conf, err := config.Process()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := openLog(conf.LogLevel, opts.logfile, opts.logjson)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Log error: %v\n", err)
		os.Exit(1)
	}
	startupLog := log.With().Str("phase", "startup").Logger()
	startupLog.Info().Str("version", config.Version).Str("buildDate", config.BuildDate).
		Msg("Runic Mailman starting")

	removePID, err := writePIDFile(opts.pidfile)
	if err != nil {
		startupLog.Fatal().Err(err).Str("path", opts.pidfile).Msg("Failed to write pidfile")
	}

	svcs, err := server.FullAssembly(conf)
	if err != nil {
		removePID()
		startupLog.Fatal().Err(err).Msg("Fatal error during startup")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	rootCtx, rootCancel := context.WithCancel(context.Background())
	svcs.Start(rootCtx, func() {
		startupLog.Info().Str("addr", conf.Web.Addr).Str("basePath", conf.Web.BasePath).
			Msg("Dashboard ready")
	})

	shutdownLog := log.With().Str("phase", "shutdown").Logger()
	select {
	case sig := <-sigChan:
		shutdownLog.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")
	case err := <-svcs.Notify():
		shutdownLog.Error().Err(err).Msg("Service failed, shutting down")
	}
	rootCancel()

	// Force an exit if background services do not stop in time.
	timer := time.AfterFunc(shutdownGrace, func() {
		removePID()
		shutdownLog.Error().Dur("grace", shutdownGrace).Msg("Clean shutdown took too long, forcing exit")
		os.Exit(0)
	})
	svcs.Drain()
	timer.Stop()
	removePID()
	closeLog()
}
