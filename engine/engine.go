package engine

import (
	"context"
)

// Handle allows to obtain a single-point energy from one engine. The
// methods are called in order: BuildInput, Run, Energy, and Close, which
// must always be called.
type Handle interface {
	//Name returns the engine handled.
	Name() Name

	//Available returns whether the engine's toolchain can be found.
	Available() bool

	//BuildInput writes the input files for the structure st into the sandbox.
	BuildInput(sb *Sandbox, st *Structure) error

	//Run runs the engine on an input previously built in the sandbox.
	//It returns false if the engine failed. The error is only non-nil, and
	//critical, if the toolchain can't be used at all.
	Run(ctx context.Context, sb *Sandbox) (bool, error)

	//Energy collects the energy of a successful run and returns it
	//as canonical components.
	Energy(ctx context.Context, sb *Sandbox) (*Report, error)

	//Close releases whatever resources the handle holds.
	Close() error
}

// Record associates an engine name with a constructor for its Handle.
type Record struct {
	Name Name
	New  func(cfg *Config) Handle
}

// Records returns the records for all the known engines.
func Records() []Record {
	ret := make([]Record, 0, len(Names()))
	for _, v := range Names() {
		n := v
		ret = append(ret, Record{Name: n, New: func(cfg *Config) Handle {
			h, _ := NewHandle(n, cfg)
			return h
		}})
	}
	return ret
}

// NewHandle returns a Handle for the engine name. Amber and Desmond are
// recognized, but their handles are never available.
func NewHandle(name Name, cfg *Config) (Handle, error) {
	cfg = cfg.orDefault()
	switch name {
	case Gromacs:
		return NewGromacsHandle(cfg), nil
	case OpenMM:
		return NewOpenMMHandle(cfg), nil
	case HOOMD:
		return NewHoomdHandle(cfg), nil
	case Cassandra:
		return NewCassandraHandle(cfg), nil
	case Amber, Desmond:
		return &reservedHandle{name: name}, nil
	default:
		return nil, Error{message: ErrUnknownEngine, engine: name, deco: []string{"NewHandle"}}
	}
}
