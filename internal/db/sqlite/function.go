package sqlite

import (
	"database/sql/driver"
	"fmt"
	"sync"

	"modernc.org/sqlite"

	"github.com/kailas-cloud/kmsearch/internal/domain/khmer"
)

// NormalizeFuncName is the SQL name of the Khmer search normalizer.
const NormalizeFuncName = "normalize_khmer_search"

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterNormalizeFunction makes normalize_khmer_search available to every
// connection opened by the sqlite driver. Repeated calls are no-ops.
func RegisterNormalizeFunction() error {
	registerOnce.Do(func() {
		registerErr = sqlite.RegisterDeterministicScalarFunction(NormalizeFuncName, 1, normalizeKhmerSearch)
		if registerErr != nil {
			registerErr = fmt.Errorf("register %s: %w", NormalizeFuncName, registerErr)
		}
	})
	return registerErr
}

func normalizeKhmerSearch(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return khmer.Normalize(v), nil
	case []byte:
		return khmer.Normalize(string(v)), nil
	default:
		return v, nil
	}
}
