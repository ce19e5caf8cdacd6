// Package core provides core types used throughout LightDB.
//
// The package defines fundamental types like Identity, Table, Column, Row
// and the error sentinels shared by every layer.
//
// # Identity
//
// Identity identifies who issued a statement. It becomes the author of
// history commits when history is enabled:
//
//	identity := core.Identity{
//	    Name:  "John Doe",
//	    Email: "john@example.com",
//	}
//
// # Column Types
//
// Supported column types:
//   - IntegerType: whole numbers ("integer")
//   - TextType: any string without '|' or line breaks ("text")
//   - RealType: floating point numbers ("real")
//
// # Table Definition
//
//	table := core.Table{
//	    Name: "users",
//	    Columns: []core.Column{
//	        {Name: "id", Type: core.IntegerType, PrimaryKey: true},
//	        {Name: "name", Type: core.TextType},
//	    },
//	}
//
// Rows are positional: a Row holds one cell per column, in column order.
// Table.ColumnIndex is the only mapping from a column name to a cell.
package core
