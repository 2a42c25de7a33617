package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"git.sr.ht/~jakintosh/cspledger/internal/config"
	"git.sr.ht/~jakintosh/cspledger/internal/logger"
	"git.sr.ht/~jakintosh/cspledger/internal/session"
	"git.sr.ht/~jakintosh/cspledger/internal/version"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

// environment is what a subcommand runs against
type environment struct {
	fs     afero.Fs
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg     *config.Config
	logger  *slog.Logger
	session *session.Session
}

// open loads configuration, starts logging and opens the ledger. The returned func
// closes the log file.
func (env *environment) open(configName string, flags *pflag.FlagSet) (func(), error) {
	cfg, err := config.LoadConfig(configName, flags)
	if err != nil {
		return nil, err
	}

	w, closeLog, err := logger.Open(env.fs, cfg)
	if err != nil {
		return nil, err
	}
	log := logger.NewLogger(cfg, w)
	log.Info("starting", "version", version.Current().Version, "data_dir", cfg.Storage.DataDir)

	sess, err := session.Open(session.Options{
		Fs:      env.fs,
		DataDir: cfg.Storage.DataDir,
		Logger:  log,
		Limits:  cfg.EntryLimits(),
	})
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	for _, issue := range sess.LoadSummary().Issues {
		fmt.Fprintf(env.stderr, "warning: %s: %s\n", issue.Stage, issue.Message)
	}

	env.cfg, env.logger, env.session = cfg, log, sess
	return func() { _ = closeLog() }, nil
}

// confirm asks a yes/no question on stdin. Anything but y or yes is a no.
func (env *environment) confirm(prompt string) bool {
	fmt.Fprintf(env.stdout, "%s [y/N]: ", prompt)
	answer, err := bufio.NewReader(env.stdin).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
