// Package main provides a TCP SQL server for LightDB.
package main

import (
	"encoding/json"

	"github.com/nickyhof/LightDB/db"
)

// Request is the JSON form of a query line. Plain-text lines are accepted too.
type Request struct {
	Query string `json:"query"`
}

// Response represents the server's response to a query.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Type    string          `json:"type,omitempty"` // "query", "commit", "transaction" or "auth"
	Result  json.RawMessage `json:"result,omitempty"`
}

// QueryResponse contains tabular query results.
type QueryResponse struct {
	Columns     []string   `json:"columns"`
	Data        [][]string `json:"data"`
	RecordsRead int        `json:"records_read"`
	RowsScanned int        `json:"rows_scanned"`
	TimeMs      float64    `json:"time_ms"`
}

// CommitResponse contains mutation results.
type CommitResponse struct {
	TablesCreated  int     `json:"tables_created,omitempty"`
	RecordsWritten int     `json:"records_written,omitempty"`
	RecordsDeleted int     `json:"records_deleted,omitempty"`
	Transaction    string  `json:"transaction,omitempty"`
	TimeMs         float64 `json:"time_ms"`
}

// OutcomeResponse is one statement replayed by COMMIT.
type OutcomeResponse struct {
	Query   string `json:"query"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// TransactionResponse reports a BEGIN, END, COMMIT, ROLLBACK or a queued
// statement.
type TransactionResponse struct {
	Action      string            `json:"action"`
	State       string            `json:"state"`
	Queued      int               `json:"queued"`
	Outcomes    []OutcomeResponse `json:"outcomes,omitempty"`
	Transaction string            `json:"transaction,omitempty"`
	TimeMs      float64           `json:"time_ms"`
}

// AuthResponse is returned for a successful AUTH command.
type AuthResponse struct {
	Authenticated bool   `json:"authenticated"`
	Identity      string `json:"identity"`
	ExpiresIn     int    `json:"expires_in,omitempty"`
}

var actionNames = map[db.TransactionAction]string{
	db.TransactionBegun:      "begin",
	db.StatementQueued:       "queued",
	db.TransactionEnded:      "end",
	db.TransactionCommitted:  "commit",
	db.TransactionRolledBack: "rollback",
}

// NewResultResponse converts an engine result into a Response.
func NewResultResponse(result db.Result) Response {
	var (
		kind    string
		payload any
	)

	switch r := result.(type) {
	case db.QueryResult:
		kind = "query"
		payload = QueryResponse{
			Columns:     r.Columns,
			Data:        r.Data,
			RecordsRead: r.RecordsRead,
			RowsScanned: r.RowsScanned,
			TimeMs:      r.ExecutionTimeSec * 1000,
		}

	case db.CommitResult:
		kind = "commit"
		payload = CommitResponse{
			TablesCreated:  r.TablesCreated,
			RecordsWritten: r.RecordsWritten,
			RecordsDeleted: r.RecordsDeleted,
			Transaction:    r.Transaction.Id,
			TimeMs:         r.ExecutionTimeSec * 1000,
		}

	case db.TransactionResult:
		kind = "transaction"
		tr := TransactionResponse{
			Action:      actionNames[r.Action],
			State:       r.State.String(),
			Queued:      r.Queued,
			Transaction: r.Transaction.Id,
			TimeMs:      r.ExecutionTimeSec * 1000,
		}
		for _, outcome := range r.Outcomes {
			or := OutcomeResponse{Query: outcome.Query, Success: outcome.Err == nil}
			if outcome.Err != nil {
				or.Error = outcome.Err.Error()
			}
			tr.Outcomes = append(tr.Outcomes, or)
		}
		payload = tr

	default:
		return Response{Success: true, Type: "unknown"}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Response{Success: false, Error: err.Error()}
	}
	return Response{Success: true, Type: kind, Result: data}
}

// EncodeResponse serializes a Response to JSON with a newline.
func EncodeResponse(resp Response) ([]byte, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// DecodeRequest parses a JSON request from a byte slice.
func DecodeRequest(data []byte) (Request, error) {
	var req Request
	err := json.Unmarshal(data, &req)
	return req, err
}
