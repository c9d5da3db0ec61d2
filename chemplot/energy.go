/*
 * energy.go, part of commpare
 *
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU Lesser General Public License as published by
    the Free Software Foundation, either version 2.1 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU Lesser General Public License
    along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
*/

// Package chemplot draws the results of an energy comparison.
package chemplot

import (
	"fmt"

	"github.com/rmera/commpare/compare"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func basicEnergyPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.Y.Label.Text = "Energy (kJ/mol)"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return p
}

// EnergyBars plots the table as a grouped bar chart, with a group for each
// energy component and a bar for each engine in the group. Components an
// engine can't report are drawn as empty (zero) bars. The format of the
// file is taken from the extension of filename (png, svg, pdf, among others).
func EnergyBars(table *compare.Table, title, filename string) error {
	if table == nil || len(table.Reports) == 0 {
		return fmt.Errorf("EnergyBars: nothing to plot")
	}
	cols := table.Columns()
	p := basicEnergyPlot(title)
	n := len(table.Reports)
	width := vg.Points(40 / float64(n))
	for i, r := range table.Reports {
		vals := make(plotter.Values, len(cols))
		for j, c := range cols {
			if v, ok := r.Get(c).Float(); ok {
				vals[j] = v
			}
		}
		bars, err := plotter.NewBarChart(vals, width)
		if err != nil {
			return fmt.Errorf("EnergyBars: %s: %w", r.Engine, err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = colors(i, n)
		bars.Offset = vg.Length(float64(i)-float64(n-1)/2) * width
		p.Add(bars)
		p.Legend.Add(string(r.Engine), bars)
	}
	p.NominalX(cols...)
	return p.Save(8*vg.Inch, 5*vg.Inch, filename)
}
