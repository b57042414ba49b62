// Package datarecording stores experiment results into SQLite tables whose
// columns mirror the fields of plain Go structs.
package datarecording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/structs"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// DataRecorder buffers rows in memory and writes them to a database in
// batches. It is safe for concurrent use.
type DataRecorder interface {
	// CreateTable creates a table whose columns are the fields of
	// sampleEntry. The fields must be exported booleans, numbers or
	// strings.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers an entry of the type the table was created with.
	InsertData(tableName string, entry any)

	// ListTables returns the names of the tables created so far, sorted.
	ListTables() []string

	// Flush writes the buffered entries in one transaction.
	Flush()

	// Close flushes and closes the database.
	Close() error
}

const defaultBatchSize = 100000

// New creates a DataRecorder that writes into path + ".sqlite3". An empty
// path picks a unique file name. It panics if the file already exists. The
// buffered entries are flushed when the program exits through atexit.
func New(path string) DataRecorder {
	if path == "" {
		path = "skrm_data_recording_" + xid.New().String()
	}

	filename := path + ".sqlite3"
	if _, err := os.Stat(filename); err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	w := NewWithDB(db).(*sqliteWriter)
	atexit.Register(w.Flush)

	return w
}

// NewWithDB creates a DataRecorder on an open database.
func NewWithDB(db *sql.DB) DataRecorder {
	return &sqliteWriter{
		db:        db,
		batchSize: defaultBatchSize,
		tables:    make(map[string]*table),
	}
}

type table struct {
	rowType reflect.Type
	insert  string
	pending []any
}

type sqliteWriter struct {
	db        *sql.DB
	batchSize int

	lock     sync.Mutex
	tables   map[string]*table
	buffered int
}

func (w *sqliteWriter) CreateTable(tableName string, sampleEntry any) {
	columns, err := columnsOf(sampleEntry)
	if err != nil {
		panic(err)
	}

	w.lock.Lock()
	defer w.lock.Unlock()

	if _, exists := w.tables[tableName]; exists {
		panic(fmt.Sprintf("table %s already exists", tableName))
	}

	w.mustExecute(fmt.Sprintf("CREATE TABLE %s (\n\t%s\n);",
		tableName, strings.Join(columns, ",\n\t")))

	placeholders := strings.TrimSuffix(
		strings.Repeat("?, ", len(columns)), ", ")

	w.tables[tableName] = &table{
		rowType: reflect.TypeOf(sampleEntry),
		insert: fmt.Sprintf("INSERT INTO %s VALUES (%s)",
			tableName, placeholders),
	}
}

// columnsOf declares one column per field, typed after the field kind.
func columnsOf(entry any) ([]string, error) {
	t := reflect.TypeOf(entry)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("entry of type %v is not a struct", t)
	}

	columns := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if !field.IsExported() {
			return nil, fmt.Errorf("field %s of %s is not exported",
				field.Name, t)
		}

		sqlType, ok := sqlTypeOf(field.Type.Kind())
		if !ok {
			return nil, fmt.Errorf("field %s of %s has unsupported kind %s",
				field.Name, t, field.Type.Kind())
		}

		columns = append(columns, field.Name+" "+sqlType)
	}

	return columns, nil
}

func sqlTypeOf(kind reflect.Kind) (string, bool) {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64:
		return "INTEGER", true
	case reflect.Float32, reflect.Float64:
		return "REAL", true
	case reflect.String:
		return "TEXT", true
	default:
		return "", false
	}
}

func (w *sqliteWriter) InsertData(tableName string, entry any) {
	w.lock.Lock()
	defer w.lock.Unlock()

	t, exists := w.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != t.rowType {
		panic(fmt.Sprintf("table %s expects %s, got %T",
			tableName, t.rowType, entry))
	}

	t.pending = append(t.pending, entry)

	w.buffered++
	if w.buffered >= w.batchSize {
		w.flush()
	}
}

func (w *sqliteWriter) ListTables() []string {
	w.lock.Lock()
	defer w.lock.Unlock()

	return w.tableNames()
}

func (w *sqliteWriter) tableNames() []string {
	names := make([]string, 0, len(w.tables))
	for name := range w.tables {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (w *sqliteWriter) Flush() {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.flush()
}

func (w *sqliteWriter) flush() {
	if w.buffered == 0 {
		return
	}

	tx, err := w.db.Begin()
	if err != nil {
		panic(err)
	}

	for _, name := range w.tableNames() {
		t := w.tables[name]
		if len(t.pending) == 0 {
			continue
		}

		insertRows(tx, t)
		t.pending = nil
	}

	if err := tx.Commit(); err != nil {
		panic(err)
	}

	w.buffered = 0
}

func insertRows(tx *sql.Tx, t *table) {
	stmt, err := tx.Prepare(t.insert)
	if err != nil {
		panic(err)
	}
	defer stmt.Close()

	for _, row := range t.pending {
		if _, err := stmt.Exec(structs.Values(row)...); err != nil {
			panic(err)
		}
	}
}

func (w *sqliteWriter) Close() error {
	w.Flush()
	return w.db.Close()
}

func (w *sqliteWriter) mustExecute(query string) sql.Result {
	res, err := w.db.Exec(query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute: %s\n", query)
		panic(err)
	}

	return res
}
