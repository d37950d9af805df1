package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var logLevels = map[string]zerolog.Level{
	"debug": zerolog.DebugLevel,
	"info":  zerolog.InfoLevel,
	"warn":  zerolog.WarnLevel,
	"error": zerolog.ErrorLevel,
}

// openLog configures the global zerolog logger, returns func to flush and close the logfile.
func openLog(level string, logfile string, json bool) (close func(), err error) {
	lvl, ok := logLevels[level]
	if !ok {
		return nil, fmt.Errorf("log level %q not one of: debug, info, warn, error", level)
	}
	zerolog.SetGlobalLevel(lvl)

	w, close, err := logWriter(logfile)
	if err != nil {
		return nil, err
	}
	if json {
		log.Logger = log.Output(w)
		return close, nil
	}
	color := runtime.GOOS != "windows" && (logfile == "stderr" || logfile == "stdout")
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, NoColor: !color})
	return close, nil
}

// logWriter opens the named log destination: stderr, stdout, or an append-only file.
func logWriter(logfile string) (io.Writer, func(), error) {
	switch logfile {
	case "stderr":
		return zerolog.SyncWriter(os.Stderr), func() {}, nil
	case "stdout":
		return zerolog.SyncWriter(os.Stdout), func() {}, nil
	}
	f, err := os.OpenFile(logfile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o666)
	if err != nil {
		return nil, nil, err
	}
	bw := bufio.NewWriter(f)
	return zerolog.SyncWriter(bw), func() {
		_ = bw.Flush()
		_ = f.Close()
	}, nil
}

// writePIDFile records the process id in path.  The returned func removes the file again, and is a
// no-op when path is empty.
func writePIDFile(path string) (remove func(), err error) {
	if path == "" {
		return func() {}, nil
	}
	if err := os.WriteFile(path, fmt.Appendf(nil, "%v\n", os.Getpid()), 0o644); err != nil {
		return nil, err
	}
	return func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Error().Str("phase", "shutdown").Err(err).Str("path", path).
				Msg("Failed to remove pidfile")
		}
	}, nil
}
