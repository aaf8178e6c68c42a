// Package browser launches the system web browser for sign-in and payment pages.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Opener opens a URL outside the terminal.
type Opener func(url string) error

// Open starts the platform browser on url without waiting for it to exit.
func Open(url string) error {
	name, args, err := command(runtime.GOOS, url, exec.LookPath)
	if err != nil {
		return err
	}

	process := exec.Command(name, args...)
	if err := process.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	go func() {
		_ = process.Wait()
	}()

	return nil
}

// command picks the launcher for goos. On Linux it tries xdg-open first,
// then falls back to common browsers.
func command(goos, url string, lookPath func(string) (string, error)) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{url}, nil
	case "windows":
		return "cmd", []string{"/c", "start", url}, nil
	case "linux", "freebsd", "openbsd":
		for _, candidate := range []string{"xdg-open", "google-chrome", "firefox"} {
			if _, err := lookPath(candidate); err == nil {
				return candidate, []string{url}, nil
			}
		}
		return "", nil, fmt.Errorf("no browser found")
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
