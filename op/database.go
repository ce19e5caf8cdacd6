package op

import (
	"github.com/nickyhof/LightDB/core"
	"github.com/nickyhof/LightDB/ps"
)

// DatabaseOp covers the data directory as a whole.
type DatabaseOp struct {
	Persistence *ps.Persistence
}

func GetDatabase(persistence *ps.Persistence) *DatabaseOp {
	return &DatabaseOp{Persistence: persistence}
}

func (op *DatabaseOp) TableNames() ([]string, error) {
	return op.Persistence.ListTables()
}

// Tables loads the schema of every table, in name order.
func (op *DatabaseOp) Tables() ([]*TableOp, error) {
	names, err := op.TableNames()
	if err != nil {
		return nil, err
	}

	tables := make([]*TableOp, 0, len(names))
	for _, name := range names {
		table, err := GetTable(name, op.Persistence)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, nil
}

func (op *DatabaseOp) History(limit int) ([]ps.Transaction, error) {
	return op.Persistence.History(limit)
}

func (op *DatabaseOp) Restore(asof ps.Transaction) error {
	return op.Persistence.Restore(asof.Id)
}

// Snapshot records the current state under message.
func (op *DatabaseOp) Snapshot(message string, identity core.Identity) (ps.Transaction, error) {
	return op.Persistence.Snapshot(message, identity)
}
