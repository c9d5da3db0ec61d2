package engine

import (
	"bufio"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

const openmmDriverName = "openmm_context.py"

//go:embed openmm_context.py
var openmmDriver []byte

// ommRequest is a request to the OpenMM coprocess. Only the fields
// that the command needs are sent.
type ommRequest struct {
	Cmd     string   `json:"cmd"`
	Force   *int     `json:"force,omitempty"`
	Group   *int     `json:"group,omitempty"`
	Groups  []int    `json:"groups,omitempty"`
	Charges *Charges `json:"charges,omitempty"`
}

type ommReply struct {
	Error   string      `json:"error"`
	OK      bool        `json:"ok"`
	Forces  []ForceInfo `json:"forces"`
	Energy  *float64    `json:"energy"`
	Charges *Charges    `json:"charges"`
}

// ommCoprocess is a Context backed by a Python process that holds the
// actual OpenMM context. It speaks JSON, one object per line. The replies
// are copied to <LogDir>/openmm.out, and the standard error of the process
// goes to <LogDir>/openmm.err
type ommCoprocess struct {
	cmd    *exec.Cmd
	in     io.WriteCloser
	out    *bufio.Scanner
	logs   []*os.File
	closed bool
}

// startOpenMMContext starts the coprocess in the sandbox and waits until
// the context is built. Failing to start the interpreter is a critical error.
func startOpenMMContext(ctx context.Context, cfg *Config, module string, sb *Sandbox) (Context, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return nil, Error{message: "can't write logs", engine: OpenMM, critical: true, err: err, deco: []string{"startOpenMMContext"}}
		}
	}
	outlog, err := os.Create(filepath.Join(cfg.LogDir, "openmm.out"))
	if err != nil {
		return nil, Error{message: "can't write logs", engine: OpenMM, file: "openmm.out", critical: true, err: err, deco: []string{"startOpenMMContext"}}
	}
	errlog, err := os.Create(filepath.Join(cfg.LogDir, "openmm.err"))
	if err != nil {
		outlog.Close()
		return nil, Error{message: "can't write logs", engine: OpenMM, file: "openmm.err", critical: true, err: err, deco: []string{"startOpenMMContext"}}
	}
	O := &ommCoprocess{logs: []*os.File{outlog, errlog}}
	O.cmd = exec.CommandContext(ctx, cfg.Python, openmmDriverName, "structure.gro", "structure.top", strconv.FormatFloat(cfg.Cutoff, 'f', -1, 64), module)
	O.cmd.Dir = sb.Dir
	O.cmd.Stderr = errlog
	if O.in, err = O.cmd.StdinPipe(); err != nil {
		O.closeLogs()
		return nil, Error{message: ErrNotRunning, engine: OpenMM, critical: true, err: err, deco: []string{"startOpenMMContext"}}
	}
	stdout, err := O.cmd.StdoutPipe()
	if err != nil {
		O.closeLogs()
		return nil, Error{message: ErrNotRunning, engine: OpenMM, critical: true, err: err, deco: []string{"startOpenMMContext"}}
	}
	O.out = bufio.NewScanner(io.TeeReader(stdout, outlog))
	O.out.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	if err := O.cmd.Start(); err != nil {
		O.closeLogs()
		return nil, Error{message: ErrNotRunning, engine: OpenMM, file: cfg.Python, critical: true, err: err, deco: []string{"startOpenMMContext"}}
	}
	var r ommReply
	if err := O.read(&r); err != nil {
		O.Close()
		return nil, Error{message: ErrNotRunning, engine: OpenMM, additional: "see openmm.err", err: err, deco: []string{"startOpenMMContext"}}
	}
	return O, nil
}

func (O *ommCoprocess) read(r *ommReply) error {
	if !O.out.Scan() {
		if err := O.out.Err(); err != nil {
			return err
		}
		return fmt.Errorf("openmm coprocess exited")
	}
	if err := json.Unmarshal(O.out.Bytes(), r); err != nil {
		return fmt.Errorf("malformed reply from openmm coprocess: %w", err)
	}
	if r.Error != "" {
		return fmt.Errorf("openmm: %s", r.Error)
	}
	return nil
}

func (O *ommCoprocess) request(req ommRequest) (*ommReply, error) {
	if O.closed {
		return nil, fmt.Errorf("openmm context already closed")
	}
	b, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if _, err := O.in.Write(append(b, '\n')); err != nil {
		return nil, err
	}
	r := new(ommReply)
	if err := O.read(r); err != nil {
		return nil, err
	}
	return r, nil
}

func (O *ommCoprocess) Forces() ([]ForceInfo, error) {
	r, err := O.request(ommRequest{Cmd: "forces"})
	if err != nil {
		return nil, err
	}
	return r.Forces, nil
}

func (O *ommCoprocess) SetForceGroup(force, group int) error {
	_, err := O.request(ommRequest{Cmd: "set_group", Force: &force, Group: &group})
	return err
}

func (O *ommCoprocess) Energy(groups ...int) (float64, error) {
	r, err := O.request(ommRequest{Cmd: "energy", Groups: groups})
	if err != nil {
		return 0, err
	}
	if r.Energy == nil {
		return 0, fmt.Errorf("openmm: no energy in reply")
	}
	return *r.Energy, nil
}

func (O *ommCoprocess) Charges(force int) (Charges, error) {
	r, err := O.request(ommRequest{Cmd: "charges", Force: &force})
	if err != nil {
		return Charges{}, err
	}
	if r.Charges == nil {
		return Charges{}, fmt.Errorf("openmm: no charges in reply")
	}
	return *r.Charges, nil
}

func (O *ommCoprocess) SetCharges(force int, q Charges) error {
	_, err := O.request(ommRequest{Cmd: "set_charges", Force: &force, Charges: &q})
	return err
}

// Close asks the coprocess to quit and waits for it.
func (O *ommCoprocess) Close() error {
	if O.closed {
		return nil
	}
	O.request(ommRequest{Cmd: "quit"}) //the process may be gone already.
	O.closed = true
	O.in.Close()
	err := O.cmd.Wait()
	O.closeLogs()
	return err
}

func (O *ommCoprocess) closeLogs() {
	for _, f := range O.logs {
		f.Close()
	}
}
