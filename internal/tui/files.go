package tui

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"git.sr.ht/~jakintosh/cspledger/internal/export"
	"git.sr.ht/~jakintosh/cspledger/internal/storage"
	"github.com/spf13/afero"
)

// exportReport writes the CSV report into the output directory
func (m *Model) exportReport() {
	var buf bytes.Buffer
	if err := m.session.ExportCSV(&buf); err != nil {
		if errors.Is(err, export.ErrNothingToExport) {
			m.setStatus("No data to export", statusInfo, statusShortDuration)
			return
		}
		m.setStatus(fmt.Sprintf("Export failed: %v", err), statusError, statusDuration)
		return
	}

	path := filepath.Join(m.outputDir, export.Filename(m.now()))
	if err := m.writeOutput(path, buf.Bytes()); err != nil {
		m.setStatus(fmt.Sprintf("Export failed: %v", err), statusError, statusDuration)
		return
	}
	m.setStatus("Report saved to "+path, statusSuccess, statusDuration)
}

// downloadBackup copies the automatic backup into the output directory
func (m *Model) downloadBackup() {
	data, err := m.session.BackupJSON()
	if err != nil {
		if errors.Is(err, storage.ErrNoBackup) {
			m.setStatus("No backup yet. One is made on every change.", statusInfo, statusDuration)
			return
		}
		m.setStatus(fmt.Sprintf("Backup failed: %v", err), statusError, statusDuration)
		return
	}

	path := filepath.Join(m.outputDir, export.BackupFilename(m.now()))
	if err := m.writeOutput(path, data); err != nil {
		m.setStatus(fmt.Sprintf("Backup failed: %v", err), statusError, statusDuration)
		return
	}
	m.setStatus("Backup saved to "+path, statusSuccess, statusDuration)
}

func (m *Model) writeOutput(path string, data []byte) error {
	if err := m.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(m.fs, path, data, 0o644)
}

// startRestore asks for the backup file to restore from
func (m *Model) startRestore() {
	m.restoreInput.SetValue("")
	m.restoreInput.Focus()
	m.currentView = viewRestore
}

// loadRestore reads and validates the chosen backup, then asks for confirmation.
// The ledger is untouched until the operator confirms.
func (m *Model) loadRestore() {
	path := strings.TrimSpace(m.restoreInput.Value())
	if path == "" {
		m.setStatus("Enter the path of a backup file", statusError, statusShortDuration)
		return
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.outputDir, path)
	}

	data, err := afero.ReadFile(m.fs, path)
	if err != nil {
		m.setStatus(fmt.Sprintf("Failed to read backup: %v", err), statusError, statusDuration)
		return
	}

	pending, result := m.session.PrepareRestore(data)
	if pending == nil {
		m.setStatus(result.Message, statusError, statusDuration)
		return
	}
	m.pending = pending
	m.pendingTarget = path
	m.restoreInput.Blur()
	m.openConfirm(confirmRestore, viewDashboard)
}

// finishRestore applies or cancels the pending restore
func (m *Model) finishRestore(apply bool) {
	if m.pending == nil {
		return
	}
	result := m.pending.Cancel
	if apply {
		result = m.pending.Apply
	}
	outcome := result()
	m.pending = nil
	m.pendingTarget = ""

	kind := statusInfo
	switch {
	case !apply:
	case outcome.Success:
		kind = statusSuccess
	default:
		kind = statusError
	}
	m.refreshTransactions()
	m.refreshCustomers()
	m.setStatus(outcome.Message, kind, statusDuration)
}
