package ps

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-billy/v6/util"
	"github.com/nickyhof/LightDB/core"
)

const primaryKeyMarker = "primarykey"

// EncodeColumn renders a schema line: name|type or name|type|primarykey.
func EncodeColumn(column core.Column) string {
	line := column.Name + "|" + column.Type.String()
	if column.PrimaryKey {
		line += "|" + primaryKeyMarker
	}
	return line
}

// DecodeColumn parses one schema line.
func DecodeColumn(line string) (core.Column, error) {
	fields := strings.Split(line, "|")
	if len(fields) != 2 && len(fields) != 3 {
		return core.Column{}, fmt.Errorf("%w: expected 2 or 3 fields, got %d in %q", ErrMalformedSchema, len(fields), line)
	}
	if fields[0] == "" {
		return core.Column{}, fmt.Errorf("%w: empty column name in %q", ErrMalformedSchema, line)
	}

	columnType, err := core.ParseColumnType(fields[1])
	if err != nil {
		return core.Column{}, fmt.Errorf("%w: %v", ErrMalformedSchema, err)
	}

	column := core.Column{Name: fields[0], Type: columnType}
	if len(fields) == 3 {
		if fields[2] != primaryKeyMarker {
			return core.Column{}, fmt.Errorf("%w: unknown column flag %q", ErrMalformedSchema, fields[2])
		}
		column.PrimaryKey = true
	}
	return column, nil
}

func (p *Persistence) SchemaExists(name string) bool {
	return p.IsInitialized() && p.exists(p.schemaPath(name))
}

// GetSchema reads the column definitions of a table in their stored order.
func (p *Persistence) GetSchema(name string) (*core.Table, error) {
	if err := p.ensureInitialized(); err != nil {
		return nil, err
	}

	file, err := p.fs.Open(p.schemaPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("schema for table %s: %w", name, core.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	defer file.Close()

	table := &core.Table{Name: name}
	scanner := bufio.NewScanner(file)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		column, err := DecodeColumn(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("table %s line %d: %w", name, lineNumber, err)
		}
		table.Columns = append(table.Columns, column)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrIO, err)
	}

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSchema, err)
	}

	return table, nil
}

// CreateSchema writes the schema file, one line per column.
func (p *Persistence) CreateSchema(table core.Table) error {
	if err := p.ensureInitialized(); err != nil {
		return err
	}
	if err := table.Validate(); err != nil {
		return err
	}

	var builder strings.Builder
	for _, column := range table.Columns {
		builder.WriteString(EncodeColumn(column))
		builder.WriteByte('\n')
	}

	if err := p.fs.MkdirAll(metadataDir, 0755); err != nil {
		return fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	if err := util.WriteFile(p.fs, p.schemaPath(table.Name), []byte(builder.String()), 0644); err != nil {
		return fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	return nil
}

// DeleteSchema removes a schema file. Used to undo a half-created table.
func (p *Persistence) DeleteSchema(name string) error {
	if err := p.fs.Remove(p.schemaPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	return nil
}
