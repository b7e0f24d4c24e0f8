package cryptox

import (
	"os"
	"strings"
	"sync"
)

var (
	pepperMu   sync.RWMutex
	pepperPath string
	pepper     string
	pepperOnce sync.Once
)

// SetPepperPath points hashing at a pepper file. Must be called before the
// first Hash/Verify; later calls are ignored because hashes derived from an
// earlier pepper would stop verifying.
func SetPepperPath(path string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	pepperPath = path
}

// GetPepper returns the configured pepper, or "" when no pepper file is set
// or readable. A missing pepper degrades to unpeppered hashes rather than
// failing login outright.
func GetPepper() string {
	pepperOnce.Do(loadPepper)
	pepperMu.RLock()
	defer pepperMu.RUnlock()
	return pepper
}

func loadPepper() {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	if pepperPath == "" {
		return
	}
	data, err := os.ReadFile(pepperPath)
	if err != nil {
		return
	}
	pepper = strings.TrimSpace(string(data))
}
