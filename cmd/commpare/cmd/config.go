package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rmera/commpare/engine"
	"github.com/rmera/commpare/logger"
	"github.com/spf13/viper"
)

const envPrefix = "COMMPARE"

// setupViper registers the defaults of every configuration key, so they can
// all be overridden from the environment, and reads the config file, if any.
// A missing config file is not an error unless it was given explicitly.
func setupViper(v *viper.Viper, file string) error {
	d := engine.DefaultConfig()
	v.SetDefault("python", d.Python)
	v.SetDefault("python2", d.Python2)
	v.SetDefault("gromacs", d.Gromacs)
	v.SetDefault("cassandra", d.Cassandra)
	v.SetDefault("fraglib_setup", d.FragLibSetup)
	v.SetDefault("cutoff", d.Cutoff)
	v.SetDefault("box_length", d.BoxLength)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("log_dir", d.LogDir)
	v.SetDefault("temp_dir", d.TempDir)
	v.SetDefault("keep_artifacts", d.KeepArtifacts)
	v.SetDefault("run_id", d.RunID)
	v.SetDefault("hoomd.ref_distance", d.Hoomd.RefDistance)
	v.SetDefault("hoomd.ref_energy", d.Hoomd.RefEnergy)
	v.SetDefault("hoomd.ref_mass", d.Hoomd.RefMass)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("commpare")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.commpare")
	}
	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && file == "" && errors.As(err, &notFound) {
		return nil
	}
	return err
}

// loadConfig builds the engine configuration from v.
func loadConfig(v *viper.Viper) (*engine.Config, error) {
	cfg := engine.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.Log = logger.Default()
	if f := v.ConfigFileUsed(); f != "" {
		logger.Debugf("using config file %s", f)
	}
	return cfg, nil
}
