package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("FIBERDESK_TEST_MODE") == "" {
			_ = os.Setenv("FIBERDESK_TEST_MODE", "1")
		}
	})
}
