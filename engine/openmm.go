package engine

import (
	"context"
	"fmt"

	"github.com/rmera/commpare/logger"
)

// ForceInfo describes one of the forces in an OpenMM system.
type ForceInfo struct {
	Index int    `json:"index"`
	Class string `json:"class"`
	Group int    `json:"group"`
}

// Charges are the charge parameters of an OpenMM NonbondedForce: the
// charge of each particle, and the charge product of each exception
// (the 1-4 pairs, among others).
type Charges struct {
	Particles  []float64 `json:"particles"`
	Exceptions []float64 `json:"exceptions"`
}

// Zero returns a Charges of the same size as C, with all charges set to 0.
func (C Charges) Zero() Charges {
	return Charges{Particles: make([]float64, len(C.Particles)), Exceptions: make([]float64, len(C.Exceptions))}
}

// Context is a live OpenMM simulation context. Energies are in kJ/mol.
type Context interface {
	//Forces returns the forces in the system.
	Forces() ([]ForceInfo, error)
	//SetForceGroup assigns the force with the given index to a group.
	SetForceGroup(force, group int) error
	//Energy returns the potential energy of the given groups, or the
	//total potential energy, if no group is given.
	Energy(groups ...int) (float64, error)
	//Charges returns the charges of the NonbondedForce with the given index.
	Charges(force int) (Charges, error)
	//SetCharges sets the charges of the NonbondedForce with the given
	//index, and updates them in the context.
	SetCharges(force int, q Charges) error
	Close() error
}

// OpenMM force groups used to decompose the energy.
const (
	OMMBondGroup     = 0
	OMMAngleGroup    = 1
	OMMNonbondGroup  = 11
	OMMDihedralGroup = 12
	//unrecognized forces go here, so they only count in the total.
	OMMIgnoredGroup  = 31
)

// ommGroups assigns the OpenMM force classes to groups.
var ommGroups = map[string]int{
	"HarmonicBondForce":    OMMBondGroup,
	"HarmonicAngleForce":   OMMAngleGroup,
	"RBTorsionForce":       OMMDihedralGroup,
	"PeriodicTorsionForce": OMMDihedralGroup,
	"NonbondedForce":       OMMNonbondGroup,
}

// Decompose obtains the canonical components of the energy in the context c.
// Each force class is put in its own group and measured. The LJ energy is
// measured after zeroing all the charges of the NonbondedForce, and QQ is
// obtained as the difference between the nonbonded and LJ energies. If
// restore is true, the original charges are set back before returning.
// Unknown forces are reported to log, and contribute only to the total.
func Decompose(c Context, restore bool, log logger.Logger) (rep *Report, err error) {
	if log == nil {
		log = logger.Default()
	}
	forces, err := c.Forces()
	if err != nil {
		return nil, fmt.Errorf("Decompose: %w", err)
	}
	present := make(map[int]bool)
	var nonbonded []int
	for _, f := range forces {
		g, ok := ommGroups[f.Class]
		if !ok {
			log.Warnf("force %s unrecognized, ignoring", f.Class)
			if err := c.SetForceGroup(f.Index, OMMIgnoredGroup); err != nil {
				return nil, fmt.Errorf("Decompose: %w", err)
			}
			continue
		}
		if err := c.SetForceGroup(f.Index, g); err != nil {
			return nil, fmt.Errorf("Decompose: %w", err)
		}
		present[g] = true
		if g == OMMNonbondGroup {
			nonbonded = append(nonbonded, f.Index)
		}
	}
	rep = NewReport(OpenMM, CanonicalKeys())
	total, err := c.Energy()
	if err != nil {
		return nil, fmt.Errorf("Decompose: %w", err)
	}
	rep.Values[All] = Energy(total)
	for _, v := range []struct {
		key   string
		group int
	}{{Bond, OMMBondGroup}, {Angle, OMMAngleGroup}, {Dihedral, OMMDihedralGroup}, {Nonbond, OMMNonbondGroup}} {
		if !present[v.group] {
			continue
		}
		e, err := c.Energy(v.group)
		if err != nil {
			return nil, fmt.Errorf("Decompose: %w", err)
		}
		rep.Values[v.key] = Energy(e)
	}
	if len(nonbonded) == 0 {
		return rep, nil
	}
	snapshot := make(map[int]Charges, len(nonbonded))
	for _, f := range nonbonded {
		q, err := c.Charges(f)
		if err != nil {
			return nil, fmt.Errorf("Decompose: %w", err)
		}
		snapshot[f] = q
		if err := c.SetCharges(f, q.Zero()); err != nil {
			return nil, fmt.Errorf("Decompose: %w", err)
		}
	}
	if restore {
		defer func() {
			for _, f := range nonbonded {
				if rerr := c.SetCharges(f, snapshot[f]); rerr != nil && err == nil {
					rep, err = nil, fmt.Errorf("Decompose: restoring charges: %w", rerr)
				}
			}
		}()
	}
	lj, err := c.Energy(OMMNonbondGroup)
	if err != nil {
		return nil, fmt.Errorf("Decompose: %w", err)
	}
	nb, _ := rep.Values[Nonbond].Float()
	rep.Values[LJ] = Energy(lj)
	rep.Values[QQ] = Energy(nb - lj)
	return rep, nil
}

// OpenMMHandle obtains energies with OpenMM, which reads the Gromacs files
// directly. The OpenMM context lives in a Python coprocess between Run and Close.
type OpenMMHandle struct {
	cfg    *Config
	module string
	ctx    Context
	start  func(ctx context.Context, cfg *Config, module string, sb *Sandbox) (Context, error)
}

// NewOpenMMHandle returns a handle for OpenMM set from cfg.
func NewOpenMMHandle(cfg *Config) *OpenMMHandle {
	cfg = cfg.orDefault()
	return &OpenMMHandle{cfg: cfg, start: startOpenMMContext}
}

func (O *OpenMMHandle) Name() Name { return OpenMM }

// Available returns true if OpenMM can be imported by the configured Python
// interpreter, either as openmm or as simtk.openmm
func (O *OpenMMHandle) Available() bool {
	m, ok := openmmModule(O.cfg.Python)
	if ok {
		O.module = m
	}
	return ok
}

// BuildInput writes structure.gro, structure.top and the context driver script.
func (O *OpenMMHandle) BuildInput(sb *Sandbox, st *Structure) error {
	if err := st.writeGromacsFiles(sb, OpenMM); err != nil {
		return errDecorate(err, "OpenMMHandle.BuildInput")
	}
	if err := sb.WriteFile(openmmDriverName, openmmDriver); err != nil {
		return Error{message: ErrCantInput, engine: OpenMM, file: openmmDriverName, err: err, deco: []string{"OpenMMHandle.BuildInput"}}
	}
	return nil
}

// Run starts the OpenMM coprocess, which builds the system and the context.
func (O *OpenMMHandle) Run(ctx context.Context, sb *Sandbox) (bool, error) {
	if O.module == "" && !O.Available() {
		return false, Error{message: ErrNotAvailable, engine: OpenMM, additional: "can't import openmm with " + O.cfg.Python, critical: true, deco: []string{"OpenMMHandle.Run"}}
	}
	c, err := O.start(ctx, O.cfg, O.module, sb)
	if err != nil {
		if IsCritical(err) {
			return false, errDecorate(err, "OpenMMHandle.Run")
		}
		O.cfg.logger().Warnf("openmm: can't create the context: %v", err)
		return false, nil
	}
	O.ctx = c
	return true, nil
}

// Energy decomposes the energy of the context. The charges are not restored,
// as the context is discarded afterwards.
func (O *OpenMMHandle) Energy(ctx context.Context, sb *Sandbox) (*Report, error) {
	if O.ctx == nil {
		return nil, Error{message: ErrNoEnergy, engine: OpenMM, additional: "no context", deco: []string{"OpenMMHandle.Energy"}}
	}
	rep, err := Decompose(O.ctx, false, O.cfg.logger().WithPrefix("openmm"))
	if err != nil {
		return nil, Error{message: ErrNoEnergy, engine: OpenMM, err: err, deco: []string{"OpenMMHandle.Energy"}}
	}
	return rep, nil
}

// Close terminates the coprocess, if any.
func (O *OpenMMHandle) Close() error {
	if O.ctx == nil {
		return nil
	}
	err := O.ctx.Close()
	O.ctx = nil
	return err
}
