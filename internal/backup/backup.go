// Package backup encodes ledger snapshots and validates backup text before it is
// allowed to replace the live ledger.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"git.sr.ht/~jakintosh/cspledger/internal/core"
	"github.com/shopspring/decimal"
)

const (
	MessageRestored  = "Data restored successfully."
	MessageCancelled = "Restore operation cancelled."
	messageFailed    = "Failed to restore backup: "
)

var ErrInvalidFormat = errors.New("invalid or corrupted backup file format")

// Result is the outcome reported back to the operator after a restore attempt.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Restored is the result of a completed restore.
func Restored() Result {
	return Result{Success: true, Message: MessageRestored}
}

// Cancelled is the result of a restore the operator declined.
func Cancelled() Result {
	return Result{Success: false, Message: MessageCancelled}
}

// Failed wraps err into a failed restore result.
func Failed(err error) Result {
	return Result{Success: false, Message: messageFailed + err.Error()}
}

// AutoBackup is the document written after every change.
type AutoBackup struct {
	core.State
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot returns the canonical backup shape of state.
func Snapshot(state core.State) core.State {
	return state.Clone()
}

// Encode renders a snapshot as indented JSON.
func Encode(snapshot core.State) ([]byte, error) {
	data, err := json.MarshalIndent(Snapshot(snapshot), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return data, nil
}

// EncodeAuto renders the automatic backup of state taken at at.
func EncodeAuto(state core.State, at time.Time) ([]byte, error) {
	data, err := json.MarshalIndent(AutoBackup{State: Snapshot(state), Timestamp: at.UTC()}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return data, nil
}

// Parse validates backup text and decodes it. The document must be an object with a
// transactions array and numeric initialBankBalance and initialCashInHand, and every
// amount must satisfy core.AmountInRange. A missing or null customers field means no
// customers.
func Parse(text []byte) (core.State, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(text, &raw); err != nil {
		return core.State{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if raw == nil {
		return core.State{}, fmt.Errorf("%w: backup is not an object", ErrInvalidFormat)
	}

	if !isKind(raw["transactions"], '[') {
		return core.State{}, fmt.Errorf("%w: transactions must be a list", ErrInvalidFormat)
	}
	bank, err := number(raw, "initialBankBalance")
	if err != nil {
		return core.State{}, err
	}
	cash, err := number(raw, "initialCashInHand")
	if err != nil {
		return core.State{}, err
	}

	state := core.State{
		Transactions:       []core.Transaction{},
		Customers:          []core.Customer{},
		InitialBankBalance: bank,
		InitialCashInHand:  cash,
	}
	if err := json.Unmarshal(raw["transactions"], &state.Transactions); err != nil {
		return core.State{}, fmt.Errorf("%w: transactions: %v", ErrInvalidFormat, err)
	}
	for i, tx := range state.Transactions {
		if !core.AmountInRange(tx.Amount) {
			return core.State{}, fmt.Errorf("%w: transaction %d amount is out of range", ErrInvalidFormat, i+1)
		}
	}

	if customers, ok := raw["customers"]; ok && !isNull(customers) {
		if !isKind(customers, '[') {
			return core.State{}, fmt.Errorf("%w: customers must be a list", ErrInvalidFormat)
		}
		if err := json.Unmarshal(customers, &state.Customers); err != nil {
			return core.State{}, fmt.Errorf("%w: customers: %v", ErrInvalidFormat, err)
		}
	}

	if state.Transactions == nil {
		state.Transactions = []core.Transaction{}
	}
	if state.Customers == nil {
		state.Customers = []core.Customer{}
	}
	return state, nil
}

func number(raw map[string]json.RawMessage, key string) (decimal.Decimal, error) {
	value := bytes.TrimSpace(raw[key])
	if len(value) == 0 || !(value[0] == '-' || (value[0] >= '0' && value[0] <= '9')) {
		return decimal.Zero, fmt.Errorf("%w: %s must be a number", ErrInvalidFormat, key)
	}
	d, err := decimal.NewFromString(string(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, key, err)
	}
	if !core.AmountInRange(d) {
		return decimal.Zero, fmt.Errorf("%w: %s is out of range", ErrInvalidFormat, key)
	}
	return d, nil
}

func isKind(value json.RawMessage, open byte) bool {
	value = bytes.TrimSpace(value)
	return len(value) > 0 && value[0] == open
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}
