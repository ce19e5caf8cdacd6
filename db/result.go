package db

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nickyhof/LightDB/ps"
)

type ResultType int

const (
	QueryResultType ResultType = iota
	CommitResultType
	TransactionResultType
)

type Result interface {
	Type() ResultType
	Render(w io.Writer)
	Display()
}

// LineSeparator joins the values of one row in Lines.
const LineSeparator = " | "

type QueryResult struct {
	Table            string
	Columns          []string
	Data             [][]string
	RecordsRead      int
	RowsScanned      int
	ExecutionTimeSec float64
	ExecutionOps     int
}

type CommitResult struct {
	Transaction      ps.Transaction
	TablesCreated    int
	RecordsWritten   int
	RecordsDeleted   int
	ExecutionTimeSec float64
	ExecutionOps     int
}

// TransactionAction says what a transaction control statement, or a
// statement received inside a transaction, did to the session.
type TransactionAction int

const (
	TransactionBegun TransactionAction = iota
	StatementQueued
	TransactionEnded
	TransactionCommitted
	TransactionRolledBack
)

// StatementOutcome is the result of one statement replayed by COMMIT.
type StatementOutcome struct {
	Query  string
	Result Result
	Err    error
}

type TransactionResult struct {
	Action           TransactionAction
	State            TransactionState
	Queued           int
	Outcomes         []StatementOutcome
	Transaction      ps.Transaction
	ExecutionTimeSec float64
}

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#02D98E"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9B9B9B"))
)

func (result QueryResult) Type() ResultType {
	return QueryResultType
}

func (result CommitResult) Type() ResultType {
	return CommitResultType
}

func (result TransactionResult) Type() ResultType {
	return TransactionResultType
}

// formatDuration formats a duration in human-readable form
func formatDuration(secs float64) string {
	switch {
	case secs < 0.001:
		return "<1ms"
	case secs < 0.01:
		return fmt.Sprintf("%.1fms", secs*1000)
	case secs < 1:
		return fmt.Sprintf("%dms", int(secs*1000))
	case secs < 10:
		return fmt.Sprintf("%.1fs", secs)
	case secs < 60:
		return fmt.Sprintf("%ds", int(secs))
	default:
		mins := int(secs / 60)
		remainSecs := int(secs) % 60
		if remainSecs == 0 {
			return fmt.Sprintf("%dm", mins)
		}
		return fmt.Sprintf("%dm%ds", mins, remainSecs)
	}
}

func (result QueryResult) ExecutionTime() string {
	return formatDuration(result.ExecutionTimeSec)
}

func (result CommitResult) ExecutionTime() string {
	return formatDuration(result.ExecutionTimeSec)
}

// Lines renders each row as its values joined by LineSeparator.
func (result QueryResult) Lines() []string {
	lines := make([]string, len(result.Data))
	for i, row := range result.Data {
		lines[i] = strings.Join(row, LineSeparator)
	}
	return lines
}

func (result QueryResult) Render(w io.Writer) {
	if len(result.Data) > 0 {
		data := NewTable(w)
		data.Header(result.Columns)
		data.Bulk(result.Data)
		data.Render()
	}

	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d rows (%s, %d scanned)",
		result.RecordsRead, result.ExecutionTime(), result.RowsScanned)))
}

func (result QueryResult) Display() {
	result.Render(os.Stdout)
}

func (result CommitResult) Render(w io.Writer) {
	var parts []string

	if result.TablesCreated > 0 {
		parts = append(parts, fmt.Sprintf("%d table(s) created", result.TablesCreated))
	}
	if result.RecordsWritten > 0 {
		parts = append(parts, fmt.Sprintf("%d record(s) written", result.RecordsWritten))
	}
	if result.RecordsDeleted > 0 {
		parts = append(parts, fmt.Sprintf("%d record(s) deleted", result.RecordsDeleted))
	}

	summary := "OK"
	if len(parts) > 0 {
		summary = strings.Join(parts, ", ")
	}
	fmt.Fprintf(w, "%s %s\n", okStyle.Render(summary), mutedStyle.Render("("+result.ExecutionTime()+")"))
}

func (result CommitResult) Display() {
	result.Render(os.Stdout)
}

// Failed counts the replayed statements that returned an error.
func (result TransactionResult) Failed() int {
	failed := 0
	for _, outcome := range result.Outcomes {
		if outcome.Err != nil {
			failed++
		}
	}
	return failed
}

// Err joins the errors of every failed replayed statement, or returns nil.
func (result TransactionResult) Err() error {
	var errs []error
	for _, outcome := range result.Outcomes {
		if outcome.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", outcome.Query, outcome.Err))
		}
	}
	return errors.Join(errs...)
}

func (result TransactionResult) Render(w io.Writer) {
	switch result.Action {
	case TransactionBegun:
		fmt.Fprintln(w, okStyle.Render("Transaction started"))
	case StatementQueued:
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("Queued (%d pending)", result.Queued)))
	case TransactionEnded:
		fmt.Fprintln(w, okStyle.Render(fmt.Sprintf("Transaction closed, %d statement(s) awaiting COMMIT", result.Queued)))
	case TransactionRolledBack:
		fmt.Fprintln(w, okStyle.Render(fmt.Sprintf("Rolled back, %d statement(s) discarded", result.Queued)))
	case TransactionCommitted:
		for _, outcome := range result.Outcomes {
			if outcome.Err != nil {
				fmt.Fprintf(w, "%s %s: %v\n", failStyle.Render("FAILED"), outcome.Query, outcome.Err)
			}
		}
		summary := fmt.Sprintf("Committed %d statement(s), %d failed", len(result.Outcomes), result.Failed())
		if result.Failed() > 0 {
			fmt.Fprintln(w, failStyle.Render(summary))
		} else {
			fmt.Fprintln(w, okStyle.Render(summary))
		}
	}
}

func (result TransactionResult) Display() {
	result.Render(os.Stdout)
}
