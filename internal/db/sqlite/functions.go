package sqlite

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"sync"

	msqlite "modernc.org/sqlite"

	"github.com/kailas-cloud/review/internal/domain"
)

// SQL functions registered for every connection.
const (
	fnCosineDistance = "cosine_distance"
	fnContainsFold   = "contains_fold"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// registerFunctions installs the catalog SQL functions. Must run before the first connection.
func registerFunctions() error {
	registerOnce.Do(func() {
		if err := msqlite.RegisterDeterministicScalarFunction(fnCosineDistance, 2, cosineDistance); err != nil {
			registerErr = fmt.Errorf("register %s: %w", fnCosineDistance, err)
			return
		}
		if err := msqlite.RegisterDeterministicScalarFunction(fnContainsFold, 2, containsFold); err != nil {
			registerErr = fmt.Errorf("register %s: %w", fnContainsFold, err)
		}
	})
	return registerErr
}

// cosineDistance(a BLOB, b BLOB) returns NULL when either side is NULL or the
// vectors are not comparable, so the row never satisfies a distance bound.
func cosineDistance(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, okA := args[0].([]byte)
	b, okB := args[1].([]byte)
	if !okA || !okB {
		return nil, nil
	}
	va, ok := DecodeVector(a)
	if !ok {
		return nil, nil
	}
	vb, ok := DecodeVector(b)
	if !ok {
		return nil, nil
	}
	d, ok := domain.CosineDistance(va, vb)
	if !ok {
		return nil, nil
	}
	return d, nil
}

// containsFold(haystack TEXT, needle TEXT) expects an already lower-cased needle.
func containsFold(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	hay, ok := args[0].(string)
	if !ok {
		return int64(0), nil
	}
	needle, ok := args[1].(string)
	if !ok {
		return int64(0), nil
	}
	if strings.Contains(strings.ToLower(hay), needle) {
		return int64(1), nil
	}
	return int64(0), nil
}
