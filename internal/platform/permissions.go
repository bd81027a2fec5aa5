package platform

import (
	"os"
	"runtime"
)

// Chmod sets file permissions. On Windows this is a no-op because Windows
// does not support Unix-style permission bits.
func Chmod(path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(path, mode)
}

// WriteFile writes data to path, replacing any existing content, and then
// sets mode exactly. os.WriteFile alone leaves the mode of an existing file
// untouched and is subject to the process umask.
func WriteFile(path string, data []byte, mode os.FileMode) error {
	if err := os.WriteFile(path, data, mode); err != nil {
		return err
	}
	return Chmod(path, mode)
}

// ModeFor returns the file mode for an emitted file.
func ModeFor(executable bool) os.FileMode {
	if executable {
		return 0755
	}
	return 0644
}
