package db

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/nickyhof/LightDB/core"
	"github.com/nickyhof/LightDB/op"
	"github.com/nickyhof/LightDB/ps"
)

// ImportReport summarises a script run through a session.
type ImportReport struct {
	Statements int
	Succeeded  int
	Failures   []StatementOutcome
}

func (report ImportReport) Err() error {
	var errs []error
	for _, failure := range report.Failures {
		errs = append(errs, fmt.Errorf("%s: %w", failure.Query, failure.Err))
	}
	return errors.Join(errs...)
}

// ImportScript reads the statements at location and executes each through
// the session, so BEGIN/END/COMMIT inside the script behave as typed. A
// failing statement is recorded and the script continues.
func (session *Session) ImportScript(ctx context.Context, location string, cfg *ps.S3Config) (ImportReport, error) {
	reader, err := ps.OpenReader(ctx, location, cfg)
	if err != nil {
		return ImportReport{}, fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return ImportReport{}, fmt.Errorf("%w: %v", core.ErrIO, err)
	}

	return session.ExecuteScript(string(content)), nil
}

// ExecuteScript runs every statement in content in order.
func (session *Session) ExecuteScript(content string) ImportReport {
	report := ImportReport{}
	for _, statement := range SplitStatements(content) {
		report.Statements++
		result, err := session.Execute(statement)
		if err == nil {
			if committed, ok := result.(TransactionResult); ok {
				err = committed.Err()
			}
		}
		if err != nil {
			report.Failures = append(report.Failures, StatementOutcome{Query: statement, Result: result, Err: err})
			continue
		}
		report.Succeeded++
	}
	return report
}

// SplitStatements splits a script on semicolons outside single-quoted
// strings and drops "--" comments.
func SplitStatements(content string) []string {
	var statements []string
	var current strings.Builder
	inString := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if ch == '\'' {
			inString = !inString
		}

		if !inString && ch == '-' && i+1 < len(content) && content[i+1] == '-' {
			for i < len(content) && content[i] != '\n' {
				i++
			}
			current.WriteByte('\n')
			continue
		}

		if !inString && ch == ';' {
			if statement := strings.TrimSpace(current.String()); statement != "" {
				statements = append(statements, statement)
			}
			current.Reset()
			continue
		}

		current.WriteByte(ch)
	}

	// Last statement without semicolon
	if statement := strings.TrimSpace(current.String()); statement != "" {
		statements = append(statements, statement)
	}

	return statements
}

var bareNumber = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?$`)

func dumpValue(value string) (string, error) {
	if bareNumber.MatchString(value) {
		return value, nil
	}
	if strings.ContainsRune(value, '\'') {
		return "", fmt.Errorf("%w: value %q contains a single quote and cannot be dumped", core.ErrValidation, value)
	}
	return "'" + value + "'", nil
}

// Dump writes a script that recreates every table and row to location.
// The location is only opened once the whole script has been rendered, so
// a failed dump leaves an existing file or object as it was.
func (engine *Engine) Dump(ctx context.Context, location string, cfg *ps.S3Config) error {
	var script bytes.Buffer
	if err := engine.WriteDump(&script); err != nil {
		return err
	}

	writer, err := ps.OpenWriter(ctx, location, cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	if _, err := script.WriteTo(writer); err != nil {
		writer.Close()
		return fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	return nil
}

// WriteDump writes CREATE TABLE and INSERT statements for every table.
func (engine *Engine) WriteDump(w io.Writer) error {
	tables, err := op.GetDatabase(engine.Persistence).Tables()
	if err != nil {
		return err
	}

	out := bufio.NewWriter(w)
	for _, tableOp := range tables {
		definitions := make([]string, len(tableOp.Table.Columns))
		for i, column := range tableOp.Table.Columns {
			definitions[i] = column.Name + " " + column.Type.String()
			if column.PrimaryKey {
				definitions[i] += " primarykey"
			}
		}
		fmt.Fprintf(out, "CREATE TABLE %s (%s);\n", tableOp.Table.Name, strings.Join(definitions, ", "))

		for row, err := range tableOp.Scan() {
			if err != nil {
				return err
			}
			values := make([]string, len(row))
			for i, cell := range row {
				if values[i], err = dumpValue(cell); err != nil {
					return err
				}
			}
			fmt.Fprintf(out, "INSERT INTO %s VALUES (%s);\n", tableOp.Table.Name, strings.Join(values, ", "))
		}
	}

	if err := out.Flush(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	return nil
}
