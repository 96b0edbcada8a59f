package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound   = errors.New("db: key not found")
	ErrUnknownDriver = errors.New("db: unknown driver")
)

// Op constants name the failed operation for error context.
const (
	OpConnect = "CONNECT"
	OpPing    = "PING"
	OpQuery   = "QUERY"
	OpScan    = "SCAN"
	OpExec    = "EXEC"
	OpBegin   = "BEGIN"
	OpCommit  = "COMMIT"
	OpMigrate = "MIGRATE"
	OpGet     = "GET"
	OpSet     = "SET"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
