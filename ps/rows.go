package ps

import (
	"bufio"
	"fmt"
	"iter"
	"os"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v6/util"
	"github.com/nickyhof/LightDB/core"
)

const (
	cellSeparator = "|"
	tableSuffix   = ".txt"
	tempSuffix    = "-temp.txt"
)

func EncodeRow(row core.Row) string {
	return strings.Join(row, cellSeparator)
}

// DecodeRow splits a stored line back into cells. An empty line is a
// row with a single empty cell.
func DecodeRow(line string) core.Row {
	return core.Row(strings.Split(line, cellSeparator))
}

func (p *Persistence) TableExists(name string) bool {
	return p.IsInitialized() && p.exists(p.tablePath(name))
}

// CreateTableFile creates an empty table file and fails with
// core.ErrAlreadyExists when one is already there.
func (p *Persistence) CreateTableFile(name string) error {
	if err := p.ensureInitialized(); err != nil {
		return err
	}
	if err := p.fs.MkdirAll(tablesDir, 0755); err != nil {
		return fmt.Errorf("%w: %v", core.ErrIO, err)
	}

	file, err := p.fs.OpenFile(p.tablePath(name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("table %s: %w", name, core.ErrAlreadyExists)
		}
		return fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	return file.Close()
}

// ListTables returns the names of all tables with a data file, sorted.
func (p *Persistence) ListTables() ([]string, error) {
	if err := p.ensureInitialized(); err != nil {
		return nil, err
	}

	entries, err := p.fs.ReadDir(tablesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%w: %v", core.ErrIO, err)
	}

	names := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, tableSuffix) || strings.HasSuffix(name, tempSuffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(name, tableSuffix))
	}
	sort.Strings(names)
	return names, nil
}

// ReadRows streams the rows of a table in file order. The file is opened
// lazily and closed when iteration stops.
func (p *Persistence) ReadRows(name string) iter.Seq2[core.Row, error] {
	return func(yield func(core.Row, error) bool) {
		if err := p.ensureInitialized(); err != nil {
			yield(nil, err)
			return
		}

		file, err := p.fs.Open(p.tablePath(name))
		if err != nil {
			if os.IsNotExist(err) {
				yield(nil, fmt.Errorf("table %s: %w", name, core.ErrNotFound))
			} else {
				yield(nil, fmt.Errorf("%w: %v", core.ErrIO, err))
			}
			return
		}
		defer file.Close()

		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if !yield(DecodeRow(scanner.Text()), nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(nil, fmt.Errorf("%w: %v", core.ErrIO, err))
		}
	}
}

// AppendRow adds one encoded row at the end of the table file.
func (p *Persistence) AppendRow(name string, row core.Row) error {
	if err := p.ensureInitialized(); err != nil {
		return err
	}
	if !p.TableExists(name) {
		return fmt.Errorf("table %s: %w", name, core.ErrNotFound)
	}

	file, err := p.fs.OpenFile(p.tablePath(name), os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrIO, err)
	}

	if _, err := file.Write([]byte(EncodeRow(row) + "\n")); err != nil {
		file.Close()
		return fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	return nil
}

// RewriteTable replaces the whole table with rows. The rows are written to
// a temp file first, which is renamed over the table once complete; on any
// failure the temp file is removed and the table keeps its old content.
func (p *Persistence) RewriteTable(name string, rows iter.Seq2[core.Row, error]) (err error) {
	if err := p.ensureInitialized(); err != nil {
		return err
	}
	if !p.TableExists(name) {
		return fmt.Errorf("table %s: %w", name, core.ErrNotFound)
	}

	tempPath := p.tempTablePath(name)
	file, err := p.fs.OpenFile(tempPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrIO, err)
	}

	defer func() {
		if err != nil {
			_ = util.RemoveAll(p.fs, tempPath)
		}
	}()

	writer := bufio.NewWriter(file)
	for row, rowErr := range rows {
		if rowErr != nil {
			file.Close()
			return rowErr
		}
		if _, err := writer.WriteString(EncodeRow(row) + "\n"); err != nil {
			file.Close()
			return fmt.Errorf("%w: %v", core.ErrIO, err)
		}
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrIO, err)
	}

	if err := p.fs.Rename(tempPath, p.tablePath(name)); err != nil {
		return fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	return nil
}
