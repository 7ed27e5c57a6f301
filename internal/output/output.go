// Package output owns the agent's diagnostic log file: it installs the file
// writer on the standard logger and can reveal the log to the user on demand
// ("Show output" from a failure notification).
package output

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
)

const logFileName = "vscord-agent.log"

var (
	mu      sync.Mutex
	logPath string
)

// Setup opens the agent log in dir and wires it into the standard logger.
// On Windows (GUI mode, no console) logging goes to the file only; elsewhere
// to both stderr and the file. Errors are non-fatal — logging falls back to
// stderr.
func Setup(dir string) {
	path := filepath.Join(dir, logFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("[output] Could not open log file: %v", err)
		return
	}

	if runtime.GOOS == "windows" {
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stderr, f))
	}

	mu.Lock()
	logPath = path
	mu.Unlock()
}

// Path returns the log file path, or "" before Setup.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// Reveal opens the log file with the user's default handler.
func Reveal() error {
	path := Path()
	if path == "" {
		return fmt.Errorf("log file not set up")
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		// rundll32 instead of "cmd /c start" — start mishandles paths
		// with & and spaces.
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
