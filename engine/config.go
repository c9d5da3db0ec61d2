package engine

import (
	"time"

	"github.com/rmera/commpare/logger"
)

// HoomdUnits are the reference units used to build the HOOMD simulation.
// HOOMD energies are given in units of RefEnergy kcal/mol.
type HoomdUnits struct {
	RefDistance float64 `yaml:"ref_distance" mapstructure:"ref_distance"`
	RefEnergy   float64 `yaml:"ref_energy" mapstructure:"ref_energy"`
	RefMass     float64 `yaml:"ref_mass" mapstructure:"ref_mass"`
}

// Config contains everything the engines need to know about the
// local installation and about how to run. The zero value is not useful,
// use DefaultConfig.
type Config struct {
	Python        string        `yaml:"python" mapstructure:"python"`
	Python2       []string      `yaml:"python2" mapstructure:"python2"`
	Gromacs       []string      `yaml:"gromacs" mapstructure:"gromacs"`
	Cassandra     []string      `yaml:"cassandra" mapstructure:"cassandra"`
	FragLibSetup  string        `yaml:"fraglib_setup" mapstructure:"fraglib_setup"`
	Cutoff        float64       `yaml:"cutoff" mapstructure:"cutoff"`         //nm
	BoxLength     float64       `yaml:"box_length" mapstructure:"box_length"` //A, for Cassandra.
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`       //0 means no timeout.
	LogDir        string        `yaml:"log_dir" mapstructure:"log_dir"`       //empty means the working directory.
	TempDir       string        `yaml:"temp_dir" mapstructure:"temp_dir"`     //empty means os.TempDir()
	KeepArtifacts string        `yaml:"keep_artifacts" mapstructure:"keep_artifacts"`
	RunID         string        `yaml:"run_id" mapstructure:"run_id"`
	Hoomd         HoomdUnits    `yaml:"hoomd" mapstructure:"hoomd"`
	Log           logger.Logger `yaml:"-" mapstructure:"-"`
}

// DefaultConfig returns a Config with the values commpare uses when
// nothing else is specified.
func DefaultConfig() *Config {
	return &Config{
		Python:  "python3",
		Python2: []string{"python2", "python2.7"},
		Gromacs: []string{"gmx", "gmx_d"},
		Cassandra: []string{
			"cassandra.exe",
			"cassandra_gfortran.exe",
			"cassandra_pgfortran.exe",
			"cassandra_gfortran_openMP.exe",
			"cassandra_pgfortran_openMP.exe",
			"cassandra_intel_openMP.exe",
		},
		FragLibSetup: "library_setup.py",
		Cutoff:       1.999,
		BoxLength:    100,
		Hoomd:        HoomdUnits{RefDistance: 1, RefEnergy: 1, RefMass: 1},
		Log:          logger.Default(),
	}
}

// logger returns the logger in the configuration, or the default one.
func (C *Config) logger() logger.Logger {
	if C == nil || C.Log == nil {
		return logger.Default()
	}
	return C.Log
}

// orDefault returns C, or a default configuration if C is nil. Empty
// fields of C are filled with the default values.
func (C *Config) orDefault() *Config {
	d := DefaultConfig()
	if C == nil {
		return d
	}
	r := *C
	if r.Python == "" {
		r.Python = d.Python
	}
	if len(r.Python2) == 0 {
		r.Python2 = d.Python2
	}
	if len(r.Gromacs) == 0 {
		r.Gromacs = d.Gromacs
	}
	if len(r.Cassandra) == 0 {
		r.Cassandra = d.Cassandra
	}
	if r.FragLibSetup == "" {
		r.FragLibSetup = d.FragLibSetup
	}
	if r.Cutoff <= 0 {
		r.Cutoff = d.Cutoff
	}
	if r.BoxLength <= 0 {
		r.BoxLength = d.BoxLength
	}
	if r.Hoomd.RefDistance == 0 {
		r.Hoomd.RefDistance = 1
	}
	if r.Hoomd.RefEnergy == 0 {
		r.Hoomd.RefEnergy = 1
	}
	if r.Hoomd.RefMass == 0 {
		r.Hoomd.RefMass = 1
	}
	if r.Log == nil {
		r.Log = d.Log
	}
	return &r
}
