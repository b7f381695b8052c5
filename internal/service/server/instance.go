package server

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-ps"
)

// ErrAlreadyRunning indicates another daemon process with the same executable name exists.
var ErrAlreadyRunning = errors.New("another instance is already running")

// processLister lists running processes.
type processLister func() ([]ps.Process, error)

// ensureSingleInstance fails when a process other than this one runs the
// executable with the given name.
func ensureSingleInstance(list processLister, processName string) error {
	processList, err := list()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() != processName {
			continue
		}

		return fmt.Errorf("%w: %s (pid %d)", ErrAlreadyRunning, processName, process.Pid())
	}

	return nil
}

// currentExecutableName returns the base name of the running binary.
func currentExecutableName() (string, error) {
	path, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}

	return filepath.Base(path), nil
}
