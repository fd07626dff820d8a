// Package guard switches the process into test mode when imported, so
// binaries and app wiring skip dialing PostgreSQL and Redis.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("PLANTSTOCK_TEST_MODE") == "" {
			_ = os.Setenv("PLANTSTOCK_TEST_MODE", "1")
		}
	})
}
