package engine

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// EnvEnginePath names an engine binary, overriding the lookup below.
const EnvEnginePath = "MELODY_ENGINE"

// FindEngine looks for an external UCI engine: the configured path, the
// MELODY_ENGINE variable, tools/stockfish next to the working directory,
// then stockfish on PATH. It returns "" when none is found.
func FindEngine(configured string) string {
	if configured != "" {
		return configured
	}
	if p := os.Getenv(EnvEnginePath); p != "" {
		return p
	}
	name := "stockfish"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	local := filepath.Join("tools", "stockfish", name)
	if fi, err := os.Stat(local); err == nil && !fi.IsDir() {
		return local
	}
	if p, err := exec.LookPath("stockfish"); err == nil {
		return p
	}
	return ""
}
