package engine

import (
	"context"
	"os/exec"
	"time"
)

// lookPath returns the path of the first program in names that can
// be found in the PATH.
func lookPath(names []string) (string, bool) {
	for _, v := range names {
		if p, err := exec.LookPath(v); err == nil {
			return p, true
		}
	}
	return "", false
}

// probeTimeout limits the time spent importing Python modules while detecting.
const probeTimeout = 2 * time.Minute

// pythonHasModule returns true if the interpreter python can import the module.
// Any failure means "no".
func pythonHasModule(python, module string) bool {
	return pythonSucceeds(python, "import "+module)
}

func pythonSucceeds(python, code string) bool {
	if _, err := exec.LookPath(python); err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	return exec.CommandContext(ctx, python, "-c", code).Run() == nil
}

// openmmModule returns the name under which OpenMM can be imported, if any.
// Older versions live in the simtk namespace.
func openmmModule(python string) (string, bool) {
	for _, m := range []string{"openmm", "simtk.openmm"} {
		if pythonHasModule(python, m) {
			return m, true
		}
	}
	return "", false
}

// Detect returns whether the engine name can be run with the given configuration.
func Detect(name Name, cfg *Config) bool {
	h, err := NewHandle(name, cfg)
	if err != nil {
		return false
	}
	defer h.Close()
	return h.Available()
}

// Available returns the engines that can be run, in the canonical order.
func Available(cfg *Config) []Name {
	var ret []Name
	for _, v := range Names() {
		if Detect(v, cfg) {
			ret = append(ret, v)
		}
	}
	return ret
}

// ReferenceSystems returns the reference data sets of validated structures
// that can be used. Currently only "validate" is known.
func ReferenceSystems(cfg *Config) []string {
	cfg = cfg.orDefault()
	var ret []string
	if pythonHasModule(cfg.Python, "validate") {
		ret = append(ret, "validate")
	}
	return ret
}

// Forcefields returns the force fields (among GAFF and OPLSAA) that the
// foyer package can load, in that order.
func Forcefields(cfg *Config) []string {
	cfg = cfg.orDefault()
	var ret []string
	for _, ff := range []string{"GAFF", "OPLSAA"} {
		code := "import foyer, sys; sys.exit(0 if hasattr(foyer.forcefields, 'load_" + ff + "') else 1)"
		if pythonSucceeds(cfg.Python, code) {
			ret = append(ret, ff)
		}
	}
	return ret
}
