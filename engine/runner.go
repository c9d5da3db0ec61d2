package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rmera/commpare/logger"
)

// Command is one invocation of an external program.
type Command struct {
	Log   string //base name for the .out and .err log files.
	Bin   string //program to run, either a path or something in the PATH.
	Args  []string
	Stdin string
	Dir   string //working directory for the program, normally a Sandbox.
	//MayFail marks programs expected to exit with a non-zero status.
	//Their failure is only logged at debug level.
	MayFail bool
}

func (C Command) String() string {
	return strings.TrimSpace(C.Bin + " " + strings.Join(C.Args, " "))
}

// Result is the outcome of a Command. Success is false if the program
// exited with a non-zero status, or was stopped.
type Result struct {
	Success bool
	Stdout  string
	Stderr  string
}

// Runner runs external programs, keeping a log of their standard output
// and error in LogDir.
type Runner struct {
	LogDir  string
	Timeout time.Duration
	Log     logger.Logger
}

// NewRunner returns a Runner set from the configuration.
func NewRunner(cfg *Config) *Runner {
	cfg = cfg.orDefault()
	return &Runner{LogDir: cfg.LogDir, Timeout: cfg.Timeout, Log: cfg.logger()}
}

// Run runs the command and waits for it. The standard output and error
// of the command are always written to <LogDir>/<Log>.out and
// <LogDir>/<Log>.err. A failed program is reported through Result.Success,
// not as an error. An error is returned only when the program can't be
// started at all, or the logs can't be written, and it is critical.
func (R *Runner) Run(ctx context.Context, C Command) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if R.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, R.Timeout)
		defer cancel()
	}
	log := R.Log
	if log == nil {
		log = logger.Default()
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, C.Bin, C.Args...)
	cmd.Dir = C.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if C.Stdin != "" {
		cmd.Stdin = strings.NewReader(C.Stdin)
	}
	log.Debugf("Running %s in %s", C, C.Dir)
	err := cmd.Run()
	var exit *exec.ExitError
	if err != nil && !errors.As(err, &exit) && ctx.Err() == nil {
		return Result{}, Error{message: ErrNotRunning, file: C.Bin, additional: C.String(), critical: true, err: err, deco: []string{"Run"}}
	}
	res := Result{Success: err == nil, Stdout: stdout.String(), Stderr: stderr.String()}
	errlog := res.Stderr
	if !res.Success {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		errlog += fmt.Sprintf("\ncommpare: command %q failed: %v\n", C.String(), err)
		if C.MayFail {
			log.Debugf("%s exited with: %v", C.Log, err)
		} else {
			log.Warnf("%s failed: %v (see %s.err)", C.Log, err, C.Log)
		}
	}
	if werr := R.writeLogs(C.Log, res.Stdout, errlog); werr != nil {
		return res, Error{message: "can't write logs", file: C.Log, critical: true, err: werr, deco: []string{"Run"}}
	}
	return res, nil
}

func (R *Runner) writeLogs(name, out, err string) error {
	if name == "" {
		return nil
	}
	if R.LogDir != "" {
		if e := os.MkdirAll(R.LogDir, 0o755); e != nil {
			return e
		}
	}
	write := func(ext, s string) error {
		f, e := os.Create(filepath.Join(R.LogDir, name+ext))
		if e != nil {
			return e
		}
		defer f.Close()
		_, e = io.WriteString(f, s)
		return e
	}
	if e := write(".out", out); e != nil {
		return e
	}
	return write(".err", err)
}
