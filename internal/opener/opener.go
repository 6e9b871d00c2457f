// Package opener hands a file to the platform's default editor.
package opener

import (
	"fmt"
	"os/exec"
)

// Open starts the editor for path and returns without waiting for it.
func Open(path string) error {
	name, args := command(path)
	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return nil
}
