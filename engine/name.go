package engine

import (
	"fmt"
	"strings"
)

// Name identifies one of the engines known to commpare.
type Name string

const (
	Gromacs   Name = "gromacs"
	OpenMM    Name = "openmm"
	HOOMD     Name = "hoomd"
	Cassandra Name = "cassandra"
	//Amber and Desmond are recognized, but never available.
	Amber   Name = "amber"
	Desmond Name = "desmond"
)

// Names returns all the known engines, in the order in which they are tried.
func Names() []Name {
	return []Name{Gromacs, OpenMM, HOOMD, Cassandra, Amber, Desmond}
}

// ParseName returns the Name corresponding to s, which is not case-sensitive.
func ParseName(s string) (Name, error) {
	n := Name(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Names() {
		if v == n {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown engine %q", s)
}

// ParseNames parses a list of engine names. An empty list gives a nil slice.
func ParseNames(s []string) ([]Name, error) {
	if len(s) == 0 {
		return nil, nil
	}
	ret := make([]Name, 0, len(s))
	for _, v := range s {
		n, err := ParseName(v)
		if err != nil {
			return nil, err
		}
		ret = append(ret, n)
	}
	return ret, nil
}

func (N Name) String() string { return string(N) }

// Reserved returns true for engines that are recognized but can't be run.
func (N Name) Reserved() bool {
	return N == Amber || N == Desmond
}

// Canonical energy components.
const (
	Bond     = "bond"
	Angle    = "angle"
	Dihedral = "dihedral"
	LJ       = "LJ"
	QQ       = "QQ"
	Nonbond  = "nonbond"
	All      = "all"
)

// CanonicalKeys returns the canonical energy components in the order
// in which they are presented.
func CanonicalKeys() []string {
	return []string{Bond, Angle, Dihedral, LJ, QQ, Nonbond, All}
}
