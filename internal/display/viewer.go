// Package display opens rendered images in an image viewer.
package display

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Viewer shows an image file to the user.
type Viewer interface {
	Open(path string) error
}

// SystemViewer opens images with the platform default or a named program.
type SystemViewer struct {
	program string
	goos    string
}

// NewSystemViewer creates a viewer. program is "system" (or empty) for the
// platform default, or the name of an image viewer such as feh or eog.
func NewSystemViewer(program string) *SystemViewer {
	if program == "" {
		program = "system"
	}
	return &SystemViewer{program: program, goos: runtime.GOOS}
}

// Open starts the viewer on path without waiting for it to exit.
func (v *SystemViewer) Open(path string) error {
	// Fail fast if file doesn't exist
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("image file does not exist: %s", path)
		}
		return fmt.Errorf("checking image file: %w", err)
	}

	cmd, err := v.command(path)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting viewer %s: %w", cmd.Path, err)
	}
	return nil
}

// command returns the command that displays path.
func (v *SystemViewer) command(path string) (*exec.Cmd, error) {
	if v.program != "system" {
		return exec.Command(v.program, path), nil
	}

	switch v.goos {
	case "darwin":
		return exec.Command("open", path), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", path), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", path), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", v.goos)
	}
}

// ShowDir is where shown images are written. It is reused across runs so
// images stay available for the viewer after hdviz exits.
func ShowDir() string {
	return filepath.Join(os.TempDir(), "hdviz")
}
