package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"phonecrm/internal/cli"
	"phonecrm/internal/config"
	"phonecrm/internal/session"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}

	// Root flags (apply to every subcommand); they override the env.
	base := flag.String("base", cfg.BaseURL, "backend base URL")
	tab := flag.String("tab", cfg.Tab, "initial tab id (new|korea)")
	logPath := flag.String("log", cfg.LogPath, "diagnostic log file")
	timeout := flag.Duration("timeout", cfg.Timeout, "per-request timeout")
	flag.Parse()
	cfg.BaseURL = strings.TrimRight(*base, "/")
	cfg.Tab = *tab
	cfg.LogPath = *logPath
	cfg.Timeout = *timeout

	logger, closeLog, err := setupLogger(cfg.LogPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "log:", err)
		return 1
	}
	defer closeLog()

	sess, err := session.Open()
	if err != nil {
		fmt.Fprintln(os.Stderr, "session:", err)
		return 1
	}

	// Hand the remaining args to the CLI runner.
	code := cli.Run(flag.Args(), cli.Env{Config: cfg, Session: sess, Logger: logger})
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	return code
}

// setupLogger opens the diagnostic log. The interactive view owns the
// terminal, so log output always goes to a file; the default lives next
// to the credentials.
func setupLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		dir, err := session.Dir()
		if err != nil {
			return nil, nil, err
		}
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, nil, err
		}
		path = filepath.Join(dir, "phonecrm.log")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(f, nil))
	return logger, func() { _ = f.Close() }, nil
}
