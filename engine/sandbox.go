package engine

import (
	"os"
	"path/filepath"
)

// Sandbox is a scratch directory where the input and output files of one
// engine run live. The process working directory is never changed, programs
// are started with the Sandbox directory as their own working directory.
type Sandbox struct {
	Dir string
}

// NewSandbox creates a new, empty, scratch directory under base. If base is empty,
// the system's temporary directory is used.
func NewSandbox(base, prefix string) (*Sandbox, error) {
	if base != "" {
		if err := os.MkdirAll(base, 0o755); err != nil {
			return nil, err
		}
	}
	dir, err := os.MkdirTemp(base, "commpare-"+prefix+"-")
	if err != nil {
		return nil, err
	}
	return &Sandbox{Dir: dir}, nil
}

// Path returns the full path of the file name in the sandbox.
func (S *Sandbox) Path(name string) string {
	return filepath.Join(S.Dir, name)
}

// Exists returns whether the file name exists in the sandbox.
func (S *Sandbox) Exists(name string) bool {
	_, err := os.Stat(S.Path(name))
	return err == nil
}

// WriteFile writes data to the file name in the sandbox.
func (S *Sandbox) WriteFile(name string, data []byte) error {
	return os.WriteFile(S.Path(name), data, 0o644)
}

// Close removes the sandbox and everything in it. It is safe to call it more than once.
func (S *Sandbox) Close() error {
	if S == nil || S.Dir == "" {
		return nil
	}
	err := os.RemoveAll(S.Dir)
	S.Dir = ""
	return err
}
