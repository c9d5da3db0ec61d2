package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rmera/commpare/compare"
	"github.com/rmera/commpare/engine"
	"github.com/spf13/viper"
)

func TestLoadConfigDefaults(Te *testing.T) {
	v := viper.New()
	if err := setupViper(v, ""); err != nil {
		Te.Fatal(err)
	}
	cfg, err := loadConfig(v)
	if err != nil {
		Te.Fatal(err)
	}
	d := engine.DefaultConfig()
	if cfg.Python != d.Python || cfg.Cutoff != d.Cutoff || len(cfg.Cassandra) != len(d.Cassandra) {
		Te.Errorf("defaults not kept: %+v", cfg)
	}
	if cfg.Log == nil {
		Te.Error("no logger in the configuration")
	}
}

func TestLoadConfigFile(Te *testing.T) {
	dir := Te.TempDir()
	file := filepath.Join(dir, "commpare.yaml")
	conf := `python: /opt/py/bin/python
gromacs: [gmx_mpi]
cutoff: 1.2
timeout: 90s
hoomd:
  ref_energy: 0.5
`
	if err := os.WriteFile(file, []byte(conf), 0o644); err != nil {
		Te.Fatal(err)
	}
	Te.Setenv("COMMPARE_BOX_LENGTH", "55")
	v := viper.New()
	if err := setupViper(v, file); err != nil {
		Te.Fatal(err)
	}
	cfg, err := loadConfig(v)
	if err != nil {
		Te.Fatal(err)
	}
	if cfg.Python != "/opt/py/bin/python" || cfg.Cutoff != 1.2 || cfg.Timeout != 90*time.Second {
		Te.Errorf("config file not read: %+v", cfg)
	}
	if len(cfg.Gromacs) != 1 || cfg.Gromacs[0] != "gmx_mpi" {
		Te.Errorf("wrong gromacs executables %v", cfg.Gromacs)
	}
	if cfg.Hoomd.RefEnergy != 0.5 || cfg.Hoomd.RefDistance != 1 {
		Te.Errorf("wrong hoomd units %+v", cfg.Hoomd)
	}
	if cfg.BoxLength != 55 {
		Te.Errorf("environment not read, box length %v", cfg.BoxLength)
	}
}

func TestMissingConfigFile(Te *testing.T) {
	if err := setupViper(viper.New(), filepath.Join(Te.TempDir(), "nothere.yaml")); err == nil {
		Te.Error("an explicit config file that doesn't exist should be an error")
	}
}

func TestWriteTable(Te *testing.T) {
	r := engine.NewReport(engine.Gromacs, []string{"bond", "all"})
	r.Values["all"] = engine.Energy(2.5)
	table := &compare.Table{Reports: []*engine.Report{r}}
	for format, want := range map[string]string{"text": "gromacs", "csv": "gromacs,,2.5", "yaml": "engine: gromacs"} {
		var b bytes.Buffer
		if err := writeTable(&b, table, format, true); err != nil {
			Te.Fatal(err)
		}
		if !strings.Contains(b.String(), want) {
			Te.Errorf("%s output doesn't contain %q:\n%s", format, want, b.String())
		}
	}
	if checkFormat("json") == nil {
		Te.Error("json accepted as a format")
	}
}

func TestVersion(Te *testing.T) {
	var b bytes.Buffer
	versionCmd.SetOut(&b)
	versionCmd.Run(versionCmd, nil)
	if !strings.HasPrefix(b.String(), "commpare ") {
		Te.Errorf("unexpected version output %q", b.String())
	}
}
