package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"git.sr.ht/~jakintosh/cspledger/internal/backup"
	"git.sr.ht/~jakintosh/cspledger/internal/core"
	"git.sr.ht/~jakintosh/cspledger/internal/entry"
	"git.sr.ht/~jakintosh/cspledger/internal/export"
	"git.sr.ht/~jakintosh/cspledger/internal/ledger"
	"git.sr.ht/~jakintosh/cspledger/internal/session"
	"git.sr.ht/~jakintosh/cspledger/internal/tui"
	"git.sr.ht/~jakintosh/cspledger/internal/version"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"golang.org/x/text/message"
)

func runTUI(env *environment, args []string) error {
	flags := commandFlags(env, "tui")
	out := flags.String("out", ".", "directory for exported reports and backups")
	if err := flags.Parse(args); err != nil {
		return err
	}

	model := tui.NewModel(env.session, tui.Options{
		Fs:        env.fs,
		OutputDir: *out,
		Printer:   message.NewPrinter(env.cfg.Display.Locale),
		Currency:  env.cfg.Display.CurrencySymbol,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func runInit(env *environment, args []string) error {
	flags := commandFlags(env, "init")
	bankText := flags.String("bank", "", "opening bank balance")
	cashText := flags.String("cash", "", "opening cash in hand")
	force := flags.Bool("force", false, "set the opening balances even if already set")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if env.session.Initialized() && !*force {
		return errors.New("ledger is already set up; use set-balance to correct balances or --force to start over")
	}
	bank, cash, err := session.ParseInitialBalances(*bankText, *cashText)
	if err != nil {
		return err
	}
	if err := env.session.Initialize(bank, cash); err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "Ledger ready: bank %s, cash %s\n", bank.StringFixed(2), cash.StringFixed(2))
	return nil
}

func requireInitialized(env *environment) error {
	if !env.session.Initialized() {
		return fmt.Errorf("%w; run cspledger init first", session.ErrNotInitialized)
	}
	return nil
}

func runSummary(env *environment, args []string) error {
	flags := commandFlags(env, "summary")
	asJSON := flags.Bool("json", false, "print as JSON")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if err := requireInitialized(env); err != nil {
		return err
	}

	summary := env.session.Summary()
	if *asJSON {
		enc := json.NewEncoder(env.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	rows := []struct {
		label string
		value string
	}{
		{"Bank balance", summary.RemainingBalance.StringFixed(2)},
		{"Cash in hand", summary.CashInHand.StringFixed(2)},
		{"Withdrawals today", summary.WithdrawalToday.StringFixed(2)},
		{"Deposits today", summary.DepositToday.StringFixed(2)},
		{"Debited from bank", summary.TotalDebited.StringFixed(2)},
		{"Deposited to bank", summary.TotalDeposited.StringFixed(2)},
	}
	for _, row := range rows {
		fmt.Fprintf(env.stdout, "%-18s %14s\n", row.label, row.value)
	}
	return nil
}

func runAdd(env *environment, args []string) error {
	flags := commandFlags(env, "add")
	name := flags.String("name", "", "customer name")
	identifier := flags.String("id", "", "customer Aadhaar or account number")
	mobile := flags.String("mobile", "", "customer mobile number")
	note := flags.String("note", "", "description")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 2 {
		flags.Usage()
		return errors.New("expected TYPE and AMOUNT")
	}
	if err := requireInitialized(env); err != nil {
		return err
	}

	t, err := core.ParseTransactionType(flags.Arg(0))
	if err != nil {
		return err
	}
	tx, err := env.session.AddTransaction(entry.TransactionInput{
		Type:               t,
		Amount:             flags.Arg(1),
		CustomerName:       *name,
		CustomerIdentifier: *identifier,
		CustomerMobile:     *mobile,
		Description:        *note,
	})
	if tx.ID == "" {
		return err
	}
	fmt.Fprintln(env.stdout, tx.String())
	if err != nil {
		return fmt.Errorf("recorded, but not saved: %w", err)
	}
	return nil
}

func runList(env *environment, args []string) error {
	flags := commandFlags(env, "list")
	search := flags.String("search", "", "only transactions whose name, id or description contains this")
	limit := flags.Int("limit", 0, "show at most this many (0 for all)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	txs := env.session.Transactions(*search)
	if *limit > 0 && len(txs) > *limit {
		txs = txs[:*limit]
	}
	for _, tx := range txs {
		fmt.Fprintln(env.stdout, tx.String())
	}
	if len(txs) == 0 {
		fmt.Fprintln(env.stderr, "no transactions")
	}
	return nil
}

func runCustomers(env *environment, args []string) error {
	flags := commandFlags(env, "customers")
	search := flags.String("search", "", "only customers whose name or id contains this")
	if err := flags.Parse(args); err != nil {
		return err
	}

	customers := env.session.Customers(*search)
	for _, c := range customers {
		fmt.Fprintf(env.stdout, "%-28s %-16s %s\n", c.Name, c.Identifier, core.Value(c.Mobile))
	}
	if len(customers) == 0 {
		fmt.Fprintln(env.stderr, "no customers")
	}
	return nil
}

func runSetBalance(env *environment, args []string) error {
	flags := commandFlags(env, "set-balance")
	bankText := flags.String("bank", "", "bank balance you actually hold")
	cashText := flags.String("cash", "", "cash you actually hold")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if err := requireInitialized(env); err != nil {
		return err
	}

	update := ledger.ParseBalanceUpdate(*bankText, *cashText)
	if update.IsEmpty() {
		return errors.New("give --bank and/or --cash as numbers")
	}
	if err := env.session.UpdateCurrentBalances(update); err != nil {
		return err
	}
	summary := env.session.Summary()
	fmt.Fprintf(env.stdout, "Bank balance %s, cash in hand %s\n",
		summary.RemainingBalance.StringFixed(2), summary.CashInHand.StringFixed(2))
	return nil
}

// output opens path for writing; "-" is stdout
func output(env *environment, path string) (io.Writer, func() error, error) {
	if path == "-" {
		return env.stdout, func() error { return nil }, nil
	}
	f, err := env.fs.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func runExport(env *environment, args []string) error {
	flags := commandFlags(env, "export")
	out := flags.String("out", "", "report file, or - for stdout (default: csp-ledger-report-<date>.csv)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if export.IsEmpty(env.session.State()) {
		return export.ErrNothingToExport
	}

	path := *out
	if path == "" {
		path = export.Filename(time.Now())
	}
	w, closeFn, err := output(env, path)
	if err != nil {
		return err
	}
	if err := env.session.ExportCSV(w); err != nil {
		_ = closeFn()
		return err
	}
	if err := closeFn(); err != nil {
		return err
	}
	if path != "-" {
		fmt.Fprintf(env.stderr, "report written to %s\n", path)
	}
	return nil
}

func runBackup(env *environment, args []string) error {
	flags := commandFlags(env, "backup")
	out := flags.String("out", "", "backup file, or - for stdout (default: csp-ledger-backup-<date>.json)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	data, err := env.session.BackupJSON()
	if err != nil {
		return err
	}
	path := *out
	if path == "" {
		path = export.BackupFilename(time.Now())
	}
	w, closeFn, err := output(env, path)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		_ = closeFn()
		return err
	}
	if err := closeFn(); err != nil {
		return err
	}
	if path != "-" {
		fmt.Fprintf(env.stderr, "backup written to %s\n", path)
	}
	return nil
}

func runRestore(env *environment, args []string) error {
	flags := commandFlags(env, "restore")
	yes := flags.BoolP("yes", "y", false, "do not ask for confirmation")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return errors.New("expected the backup FILE")
	}

	data, err := afero.ReadFile(env.fs, flags.Arg(0))
	if err != nil {
		return err
	}
	confirm := env.confirm
	if *yes {
		confirm = func(string) bool { return true }
	}

	result := env.session.Restore(data, confirm)
	if result.Success || result.Message == backup.MessageCancelled {
		fmt.Fprintln(env.stdout, result.Message)
		return nil
	}
	return errors.New(result.Message)
}

func runVersion(env *environment, args []string) error {
	fmt.Fprintln(env.stdout, version.Current().String())
	return nil
}
