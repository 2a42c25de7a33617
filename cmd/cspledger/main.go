package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

// command is one cspledger subcommand
type command struct {
	usage string
	help  string
	// needsLedger commands get an open session; the rest run without config
	needsLedger bool
	run         func(env *environment, args []string) error
}

var commands map[string]*command

func init() {
	commands = map[string]*command{
		"tui": {
			usage:       "tui [--out dir]",
			help:        "open the terminal UI (default)",
			needsLedger: true,
			run:         runTUI,
		},
		"init": {
			usage:       "init --bank AMOUNT --cash AMOUNT [--force]",
			help:        "record the opening bank balance and cash in hand",
			needsLedger: true,
			run:         runInit,
		},
		"summary": {
			usage:       "summary [--json]",
			help:        "print current balances and today's totals",
			needsLedger: true,
			run:         runSummary,
		},
		"add": {
			usage:       "add TYPE AMOUNT [--name NAME --id AADHAAR/ACCOUNT --mobile NO --note TEXT]",
			help:        "record a transaction (deposit, withdrawal, transfer, bank-deposit, bank-withdrawal)",
			needsLedger: true,
			run:         runAdd,
		},
		"list": {
			usage:       "list [--search TEXT] [--limit N]",
			help:        "list transactions, highlighted first",
			needsLedger: true,
			run:         runList,
		},
		"customers": {
			usage:       "customers [--search TEXT]",
			help:        "list saved customers",
			needsLedger: true,
			run:         runCustomers,
		},
		"set-balance": {
			usage:       "set-balance [--bank AMOUNT] [--cash AMOUNT]",
			help:        "correct the current balances without touching transactions",
			needsLedger: true,
			run:         runSetBalance,
		},
		"export": {
			usage:       "export [--out FILE|-]",
			help:        "write the CSV report",
			needsLedger: true,
			run:         runExport,
		},
		"backup": {
			usage:       "backup [--out FILE|-]",
			help:        "write the latest backup as JSON",
			needsLedger: true,
			run:         runBackup,
		},
		"restore": {
			usage:       "restore FILE [--yes]",
			help:        "replace the ledger with a backup",
			needsLedger: true,
			run:         runRestore,
		},
		"version": {
			usage: "version",
			help:  "print build information",
			run:   runVersion,
		},
	}
}

func main() {
	os.Exit(run(afero.NewOsFs(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run parses global flags, opens the ledger on fs when the command needs it and
// dispatches. It returns the process exit code.
func run(fs afero.Fs, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	global := globalFlags(stderr)
	if err := global.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	name := "tui"
	rest := global.Args()
	if len(rest) > 0 {
		name, rest = rest[0], rest[1:]
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "cspledger: unknown command %q\n\n", name)
		printUsage(stderr, global)
		return 2
	}

	env := &environment{fs: fs, stdin: stdin, stdout: stdout, stderr: stderr}
	if cmd.needsLedger {
		configName, _ := global.GetString("config")
		closeFn, err := env.open(configName, global)
		if err != nil {
			fmt.Fprintf(stderr, "cspledger: %v\n", err)
			return 1
		}
		defer closeFn()
	}

	if err := cmd.run(env, rest); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "cspledger %s: %v\n", name, err)
		if env.logger != nil {
			env.logger.Error("command failed", "command", name, "error", err)
		}
		return 1
	}
	return 0
}

func globalFlags(stderr io.Writer) *pflag.FlagSet {
	global := pflag.NewFlagSet("cspledger", pflag.ContinueOnError)
	global.SetOutput(stderr)
	global.SetInterspersed(false)
	global.String("config", "cspledger", "config file name, read as <name>.env from ./configs or .")
	global.String("data-dir", "", "directory holding the ledger (default: user config dir)")
	global.String("log-level", "", "debug, info, warn or error")
	global.String("log-file", "", `log file ("-" for stderr, default: cspledger.log in the data dir)`)
	global.String("env", "", "application environment")
	global.Usage = func() { printUsage(stderr, global) }
	return global
}

func printUsage(w io.Writer, global *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage: cspledger [global flags] [command] [command flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-12s %s\n", name, commands[name].help)
		fmt.Fprintf(w, "  %-12s   cspledger %s\n", "", commands[name].usage)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")
	fmt.Fprint(w, global.FlagUsages())
}

// commandFlags returns a flag set for a subcommand that prints its usage line on
// -h.
func commandFlags(env *environment, name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(env.stderr)
	flags.Usage = func() {
		fmt.Fprintf(env.stderr, "Usage: cspledger %s\n", commands[name].usage)
		if usages := strings.TrimRight(flags.FlagUsages(), "\n"); usages != "" {
			fmt.Fprintln(env.stderr, usages)
		}
	}
	return flags
}
