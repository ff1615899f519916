// File: api/schemas/schemas.go
package schemas

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ActionType identifies the monetary operation performed on a client account.
type ActionType string

const (
	ActionDeposit  ActionType = "deposit"
	ActionWithdraw ActionType = "withdraw"
)

// ParseActionType normalizes a raw, case-insensitive action string.
// Anything outside {deposit, withdraw} is rejected.
func ParseActionType(raw string) (ActionType, error) {
	switch ActionType(strings.ToLower(strings.TrimSpace(raw))) {
	case ActionDeposit:
		return ActionDeposit, nil
	case ActionWithdraw:
		return ActionWithdraw, nil
	default:
		return "", fmt.Errorf("invalid action type: %s", raw)
	}
}

// Title returns the action name with a leading capital, as used in
// user-facing result messages ("Deposit", "Withdraw").
func (a ActionType) Title() string {
	if a == "" {
		return ""
	}
	s := string(a)
	return strings.ToUpper(s[:1]) + s[1:]
}

// TransactionRequest is the validated tuple handed to the automation
// engine for one run. It is immutable for the duration of the call and
// never persisted by the core.
type TransactionRequest struct {
	PanelURL       string     `json:"url"`
	ClientUsername string     `json:"username"`
	Amount         float64    `json:"amount"`
	Action         ActionType `json:"type"`
}

// Validate enforces the request invariants: a known action type and a
// strictly positive amount.
func (r TransactionRequest) Validate() error {
	if _, err := ParseActionType(string(r.Action)); err != nil {
		return err
	}
	if r.Amount <= 0 {
		return fmt.Errorf("amount must be positive, got %s", FormatAmount(r.Amount))
	}
	return nil
}

// FormatAmount renders a monetary amount without a trailing fraction
// when the value is whole (500 -> "500", 500.5 -> "500.5").
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// AdminIdentity is an administrator credential pair for one panel,
// resolved by the credential store and read-only thereafter.
type AdminIdentity struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ResultStatus is the terminal outcome classification of a run.
type ResultStatus string

const (
	StatusSuccess ResultStatus = "success"
	StatusError   ResultStatus = "error"
)

// TransactionResult is the single structured value returned to the
// caller for every request. There are no error codes and no
// partial-progress reporting beyond the message text.
type TransactionResult struct {
	Status  ResultStatus `json:"status"`
	Message string       `json:"message"`
}

// Successf builds a success result from a format string.
func Successf(format string, args ...interface{}) TransactionResult {
	return TransactionResult{Status: StatusSuccess, Message: fmt.Sprintf(format, args...)}
}

// Errorf builds an error result from a format string.
func Errorf(format string, args ...interface{}) TransactionResult {
	return TransactionResult{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

// DiagnosticArtifact is the forensic evidence captured when a step
// fails: a screenshot plus the raw page markup, keyed by a tag. The
// core writes artifacts and never reads them back.
type DiagnosticArtifact struct {
	Tag        string    `json:"tag"`
	Screenshot []byte    `json:"screenshot,omitempty"`
	PageSource string    `json:"page_source,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
}
