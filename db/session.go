package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nickyhof/LightDB/core"
	"github.com/nickyhof/LightDB/sql"
)

type TransactionState int

const (
	Idle TransactionState = iota
	Open
	ClosedAwaitingCommit
)

func (state TransactionState) String() string {
	switch state {
	case Idle:
		return "idle"
	case Open:
		return "open"
	case ClosedAwaitingCommit:
		return "closed, awaiting commit"
	default:
		return fmt.Sprintf("TransactionState(%d)", int(state))
	}
}

// Session is one caller's view of an Engine. Between BEGIN TRANSACTION and
// END TRANSACTION statements are queued as received and only run, in order,
// on COMMIT. Nothing is undone when a replayed statement fails.
type Session struct {
	ID     uuid.UUID
	engine *Engine
	state  TransactionState
	queue  []string
}

func (engine *Engine) NewSession() *Session {
	return &Session{
		ID:     uuid.New(),
		engine: engine,
	}
}

func (session *Session) Engine() *Engine {
	return session.engine
}

func (session *Session) State() TransactionState {
	return session.state
}

// Pending returns a copy of the queued statements.
func (session *Session) Pending() []string {
	return append([]string(nil), session.queue...)
}

// Execute runs query through the transaction gate. A transition that is
// not allowed from the current state fails with core.ErrTransactionState and
// leaves the session unchanged.
func (session *Session) Execute(query string) (Result, error) {
	statement, err := sql.NewParser(query).Parse()

	if session.state == Open && (err != nil || !isTransactionControl(statement)) {
		session.queue = append(session.queue, query)
		return TransactionResult{
			Action: StatementQueued,
			State:  session.state,
			Queued: len(session.queue),
		}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrParseMismatch, err)
	}

	switch statement.Type() {
	case sql.BeginStatementType:
		return session.begin()
	case sql.EndStatementType:
		return session.end()
	case sql.CommitStatementType:
		return session.commit()
	case sql.RollbackStatementType:
		return session.rollback()
	default:
		return session.engine.executeStatement(statement, query, true)
	}
}

func isTransactionControl(statement sql.Statement) bool {
	switch statement.Type() {
	case sql.BeginStatementType, sql.EndStatementType, sql.CommitStatementType, sql.RollbackStatementType:
		return true
	default:
		return false
	}
}

func (session *Session) invalidTransition(statement sql.StatementType) error {
	return fmt.Errorf("%w: %s not allowed while transaction is %s", core.ErrTransactionState, statement, session.state)
}

func (session *Session) begin() (Result, error) {
	if session.state != Idle {
		return nil, session.invalidTransition(sql.BeginStatementType)
	}

	session.state = Open
	session.queue = nil
	return TransactionResult{Action: TransactionBegun, State: session.state}, nil
}

func (session *Session) end() (Result, error) {
	if session.state != Open {
		return nil, session.invalidTransition(sql.EndStatementType)
	}

	session.state = ClosedAwaitingCommit
	return TransactionResult{
		Action: TransactionEnded,
		State:  session.state,
		Queued: len(session.queue),
	}, nil
}

// commit replays the queue and records one snapshot for the whole batch.
func (session *Session) commit() (Result, error) {
	if session.state != ClosedAwaitingCommit {
		return nil, session.invalidTransition(sql.CommitStatementType)
	}
	startTime := time.Now()

	queue := session.queue
	session.queue = nil
	session.state = Idle

	result := TransactionResult{
		Action:   TransactionCommitted,
		State:    session.state,
		Queued:   len(queue),
		Outcomes: make([]StatementOutcome, 0, len(queue)),
	}
	for _, query := range queue {
		outcome, err := session.engine.execute(query, false)
		result.Outcomes = append(result.Outcomes, StatementOutcome{Query: query, Result: outcome, Err: err})
	}

	txn, err := session.engine.Snapshot(fmt.Sprintf("COMMIT (%d statements)", len(queue)), session.engine.Identity)
	result.Transaction = txn
	result.ExecutionTimeSec = time.Since(startTime).Seconds()
	if err != nil {
		return result, err
	}
	return result, nil
}

func (session *Session) rollback() (Result, error) {
	if session.state == Idle {
		return nil, session.invalidTransition(sql.RollbackStatementType)
	}

	discarded := len(session.queue)
	session.queue = nil
	session.state = Idle
	return TransactionResult{
		Action: TransactionRolledBack,
		State:  session.state,
		Queued: discarded,
	}, nil
}
