package table

import "fmt"

// ConnectionError means the warehouse cannot be reached or authenticated to.
// It is fatal for the session: callers must treat the handle as unavailable
// and stop.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("warehouse connection failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// SchemaError means column metadata could not be read. Fatal: the id column
// and display columns are derived from the schema.
type SchemaError struct {
	Table string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("could not read schema for table %q: %v", e.Table, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// QueryError means a search or allocation query failed. Recovered locally:
// the caller displays the message and carries on.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s query failed: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// WriteError means an insert or update failed. Recovered: surfaced as a
// status message with session state preserved for retry.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
