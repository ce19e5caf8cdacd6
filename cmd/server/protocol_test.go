package main

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/nickyhof/LightDB/db"
	"github.com/nickyhof/LightDB/ps"
)

func TestEncodeResponse(t *testing.T) {
	data, err := EncodeResponse(Response{Success: false, Error: "boom"})
	if err != nil {
		t.Fatalf("EncodeResponse failed: %v", err)
	}
	if data[len(data)-1] != '\n' {
		t.Error("Expected trailing newline")
	}
	if string(data) != "{\"success\":false,\"error\":\"boom\"}\n" {
		t.Errorf("Unexpected encoding: %s", data)
	}
}

func TestDecodeRequest(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"query":"SELECT * FROM t"}`))
	if err != nil {
		t.Fatalf("DecodeRequest failed: %v", err)
	}
	if req.Query != "SELECT * FROM t" {
		t.Errorf("Unexpected query: %q", req.Query)
	}

	if _, err := DecodeRequest([]byte(`not json`)); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestNewResultResponseTransaction(t *testing.T) {
	resp := NewResultResponse(db.TransactionResult{
		Action: db.TransactionCommitted,
		State:  db.Idle,
		Outcomes: []db.StatementOutcome{
			{Query: "INSERT INTO t VALUES (1)", Result: db.CommitResult{RecordsWritten: 1}},
			{Query: "INSERT INTO t VALUES (1)", Err: errors.New("duplicate")},
		},
		Transaction: ps.Transaction{Id: "abc123"},
	})

	if !resp.Success || resp.Type != "transaction" {
		t.Fatalf("Unexpected response: %+v", resp)
	}

	var tr TransactionResponse
	if err := json.Unmarshal(resp.Result, &tr); err != nil {
		t.Fatalf("Failed to parse result: %v", err)
	}
	if tr.Action != "commit" || tr.Transaction != "abc123" {
		t.Errorf("Unexpected transaction response: %+v", tr)
	}
	if len(tr.Outcomes) != 2 || tr.Outcomes[1].Error != "duplicate" {
		t.Errorf("Unexpected outcomes: %+v", tr.Outcomes)
	}
}
