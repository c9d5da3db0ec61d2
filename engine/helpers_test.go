package engine

import (
	"os"
	"path/filepath"
	"testing"
)

const ethaneGro = `ethane
    8
    1ETH     C1    1   1.500   1.500   1.500
    1ETH     H1    2   1.609   1.500   1.500
    1ETH     H2    3   1.464   1.603   1.500
    1ETH     H3    4   1.464   1.449   1.589
    1ETH     C2    5   1.449   1.428   1.375
    1ETH     H4    6   1.340   1.428   1.375
    1ETH     H5    7   1.485   1.325   1.375
    1ETH     H6    8   1.485   1.479   1.286
   3.00000   3.00000   3.00000
`

const ethaneTop = `[ defaults ]
1 3 yes 0.5 0.5

[ atomtypes ]
opls_135 CT 6 12.011 -0.18 A 0.35 0.276144
opls_140 HC 1  1.008  0.06 A 0.25 0.12552

[ moleculetype ]
ETH 3

[ atoms ]
  1 opls_135 1 ETH C1 1 -0.18 12.011
  2 opls_140 1 ETH H1 1  0.06
  3 opls_140 1 ETH H2 1  0.06
  4 opls_140 1 ETH H3 1  0.06
  5 opls_135 1 ETH C2 2 -0.18 12.011
  6 opls_140 1 ETH H4 2  0.06
  7 opls_140 1 ETH H5 2  0.06
  8 opls_140 1 ETH H6 2  0.06

[ bonds ]
1 2 1 0.109 284512.0
1 3 1 0.109 284512.0
1 4 1 0.109 284512.0
1 5 1 0.1529 224262.4
5 6 1 0.109 284512.0
5 7 1 0.109 284512.0
5 8 1 0.109 284512.0

[ pairs ]
2 6 1

[ angles ]
2 1 5 1 110.7 313.8
1 5 6 1 110.7 313.8

[ dihedrals ]
#ifndef NO_DIHEDRALS
2 1 5 6 3 0.6276 1.8828 0.0 -2.5104 0.0 0.0
#endif

[ system ]
ethane

[ molecules ]
ETH 1
`

// writeFixture writes content to dir/name and returns the full path.
func writeFixture(Te *testing.T, dir, name, content string) string {
	Te.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		Te.Fatal(err)
	}
	return p
}

// loadEthane returns the ethane structure. defines are passed to the topology reader.
func loadEthane(Te *testing.T, defines ...string) *Structure {
	Te.Helper()
	dir := Te.TempDir()
	gro := writeFixture(Te, dir, "ethane.gro", ethaneGro)
	top := writeFixture(Te, dir, "ethane.top", ethaneTop)
	st, err := LoadStructure(gro, top, defines...)
	if err != nil {
		Te.Fatal(err)
	}
	return st
}

// fakeBin writes an executable shell script called name into dir. The
// scripts can only rely on shell builtins, as the tests replace the PATH.
func fakeBin(Te *testing.T, dir, name, script string) {
	Te.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		Te.Fatal(err)
	}
}

// testConfig returns a configuration that logs to a temporary directory
// and creates the sandboxes in another.
func testConfig(Te *testing.T) *Config {
	Te.Helper()
	cfg := DefaultConfig()
	cfg.LogDir = Te.TempDir()
	cfg.TempDir = Te.TempDir()
	return cfg
}

func isClose(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
