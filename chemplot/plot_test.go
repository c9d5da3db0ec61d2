/*
 * plot_test.go
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package chemplot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rmera/commpare/compare"
	"github.com/rmera/commpare/engine"
)

func TestEnergyBars(Te *testing.T) {
	gmx := engine.NewReport(engine.Gromacs, engine.CanonicalKeys())
	omm := engine.NewReport(engine.OpenMM, engine.CanonicalKeys())
	for i, k := range engine.CanonicalKeys() {
		gmx.Values[k] = engine.Energy(float64(i) - 2)
		if k != "LJ" {
			omm.Values[k] = engine.Energy(float64(i) - 1.5)
		}
	}
	table := &compare.Table{Reports: []*engine.Report{gmx, omm}}
	for _, name := range []string{"bars.png", "bars.svg"} {
		out := filepath.Join(Te.TempDir(), name)
		if err := EnergyBars(table, "Test energies", out); err != nil {
			Te.Fatal(err)
		}
		info, err := os.Stat(out)
		if err != nil {
			Te.Fatal(err)
		}
		if info.Size() == 0 {
			Te.Errorf("%s is empty", name)
		}
	}
	if err := EnergyBars(&compare.Table{}, "", filepath.Join(Te.TempDir(), "x.png")); err == nil {
		Te.Error("plotted an empty table")
	}
}

func TestColors(Te *testing.T) {
	seen := make(map[[3]uint8]bool)
	for i := 0; i < 4; i++ {
		c := colors(i, 4)
		k := [3]uint8{c.R, c.G, c.B}
		if seen[k] {
			Te.Errorf("color %v repeated", k)
		}
		seen[k] = true
	}
	if r, g, b := iHVS2RGB(0, 1, 1); r != 255 || g != 0 || b != 0 {
		Te.Errorf("hue 0 is not red: %d %d %d", r, g, b)
	}
}
