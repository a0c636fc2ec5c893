package report

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// ErrNoDisplay is returned by Show when no display backend is available.
var ErrNoDisplay = errors.New("report: no display available")

// Show opens path in the platform image viewer. It does not wait for the
// viewer to exit. Callers treat any error as non-fatal.
func Show(path string) error {
	name, args, err := viewerCommand(runtime.GOOS, os.Getenv)
	if err != nil {
		return err
	}
	bin, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("%w: %s not found", ErrNoDisplay, name)
	}
	cmd := exec.Command(bin, append(args, path)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start viewer: %w", err)
	}
	return cmd.Process.Release()
}

func viewerCommand(goos string, getenv func(string) string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", nil, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}, nil
	default:
		if getenv("DISPLAY") == "" && getenv("WAYLAND_DISPLAY") == "" {
			return "", nil, ErrNoDisplay
		}
		return "xdg-open", nil, nil
	}
}
