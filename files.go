/*
 * files.go, part of commpare.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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
 */

package chem

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/rmera/commpare/v3"
)

//GRO files. Coordinates and box are in nm in the file, and in A in the Molecule.

// GroFileRead reads the first frame of a Gromacs gro file.
func GroFileRead(groname string) (*Molecule, error) {
	f, err := os.Open(groname)
	if err != nil {
		return nil, CError{err.Error(), []string{"os.Open", "GroFileRead"}}
	}
	defer f.Close()
	mol, err := GroRead(f)
	if err != nil {
		return nil, errDecorate(err, "GroFileRead "+groname)
	}
	return mol, nil
}

// GroRead reads the first frame of a gro-formatted stream. Velocities, if present, are ignored.
// Only the diagonal of the box is kept.
func GroRead(r io.Reader) (*Molecule, error) {
	in := bufio.NewScanner(r)
	in.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lines := make([]string, 0, 3)
	for in.Scan() {
		lines = append(lines, in.Text())
		if len(lines) == 2 {
			break
		}
	}
	if len(lines) < 2 {
		return nil, CError{"gro file too short", []string{"GroRead"}}
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(lines[1]))
	if err != nil || natoms <= 0 {
		return nil, CError{fmt.Sprintf("Can't read number of atoms from line %q", lines[1]), []string{"GroRead"}}
	}
	atoms := make([]*Atom, 0, natoms)
	coords := make([]float64, 0, 3*natoms)
	for i := 0; i < natoms; i++ {
		if !in.Scan() {
			return nil, CError{fmt.Sprintf("Expected %d atoms, found %d", natoms, i), []string{"GroRead"}}
		}
		at, c, err := groAtomLine(in.Text())
		if err != nil {
			return nil, errDecorate(err, "GroRead")
		}
		atoms = append(atoms, at)
		coords = append(coords, c[:]...)
	}
	var box [3]float64
	if in.Scan() {
		f := strings.Fields(in.Text())
		if len(f) < 3 {
			return nil, CError{"Malformed box line: " + in.Text(), []string{"GroRead"}}
		}
		for i := 0; i < 3; i++ {
			b, err := strconv.ParseFloat(f[i], 64)
			if err != nil {
				return nil, CError{"Malformed box line: " + in.Text(), []string{"strconv.ParseFloat", "GroRead"}}
			}
			box[i] = b * Nm2A
		}
	}
	top, _ := NewTopology(atoms)
	mcoords, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, errDecorate(err, "GroRead")
	}
	mol, err := NewMolecule(top, []*v3.Matrix{mcoords})
	if err != nil {
		return nil, errDecorate(err, "GroRead")
	}
	mol.Box = box
	return mol, nil
}

// groAtomLine parses one fixed-column atom line of a gro file.
func groAtomLine(line string) (*Atom, [3]float64, error) {
	var c [3]float64
	if len(line) < 44 {
		return nil, c, CError{"Atom line too short: " + line, []string{"groAtomLine"}}
	}
	at := new(Atom)
	var err error
	at.MolID, err = strconv.Atoi(strings.TrimSpace(line[0:5]))
	if err != nil {
		return nil, c, CError{"Bad residue number in line: " + line, []string{"groAtomLine"}}
	}
	at.MolName = strings.TrimSpace(line[5:10])
	at.Name = strings.TrimSpace(line[10:15])
	at.ID, err = strconv.Atoi(strings.TrimSpace(line[15:20]))
	if err != nil {
		return nil, c, CError{"Bad atom number in line: " + line, []string{"groAtomLine"}}
	}
	for i := 0; i < 3; i++ {
		c[i], err = strconv.ParseFloat(strings.TrimSpace(line[20+8*i:28+8*i]), 64)
		if err != nil {
			return nil, c, CError{"Bad coordinate in line: " + line, []string{"groAtomLine"}}
		}
		c[i] *= Nm2A
	}
	at.Symbol, _ = symbolFromName(at.Name) //It's ok if we can't guess it.
	at.Mass = MassFromSymbol(at.Symbol)
	return at, c, nil
}

// GroFileWrite writes the coordinates coords of the atoms in a gro file with name groname.
// box is the orthorhombic box in A. Gro files need a box, if none is given (zero lengths), the bounding box of the coordinates is used.
func GroFileWrite(groname string, coords *v3.Matrix, atoms Atomer, box [3]float64) error {
	out, err := os.Create(groname)
	if err != nil {
		return CError{err.Error(), []string{"os.Create", "GroFileWrite"}}
	}
	defer out.Close()
	if err := GroWrite(out, coords, atoms, box); err != nil {
		return errDecorate(err, "GroFileWrite")
	}
	return nil
}

// GroWrite writes the coordinates and atoms in gro format to the out stream.
func GroWrite(out io.Writer, coords *v3.Matrix, atoms Atomer, box [3]float64) error {
	if coords.NVecs() != atoms.Len() {
		return CError{"Number of coordinates and atoms don't match", []string{"GroWrite"}}
	}
	if box[0] <= 0 || box[1] <= 0 || box[2] <= 0 {
		box = coords.Max()
	}
	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "Written with commpare\n%5d\n", atoms.Len())
	for i := 0; i < atoms.Len(); i++ {
		a := atoms.Atom(i)
		id := a.ID
		if id == 0 {
			id = i + 1
		}
		//gro files have fixed columns, so residue and atom numbers wrap around at 100000
		fmt.Fprintf(w, "%5d%-5s%5s%5d%8.3f%8.3f%8.3f\n", a.MolID%100000, trunc(a.MolName, 5), trunc(a.Name, 5), id%100000,
			coords.At(i, 0)*A2nm, coords.At(i, 1)*A2nm, coords.At(i, 2)*A2nm)
	}
	fmt.Fprintf(w, "%10.5f%10.5f%10.5f\n", box[0]*A2nm, box[1]*A2nm, box[2]*A2nm)
	if err := w.Flush(); err != nil {
		return CError{err.Error(), []string{"bufio.Flush", "GroWrite"}}
	}
	return nil
}

func trunc(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

//XYZ files

// XYZFileWrite writes the coordinates coords of the atoms in an XYZ file with name xyzname,
// which will be created for that. If the file exists it will be overwritten.
func XYZFileWrite(xyzname string, coords *v3.Matrix, atoms Atomer) error {
	out, err := os.Create(xyzname)
	if err != nil {
		return CError{err.Error(), []string{"os.Create", "XYZFileWrite"}}
	}
	defer out.Close()
	if err := XYZWrite(out, coords, atoms); err != nil {
		return errDecorate(err, "XYZFileWrite")
	}
	return nil
}

// XYZWrite writes the coordinates in XYZ format to the out stream.
// Coordinates are written with the shortest representation that reads back
// to the same number, so rounded coordinates stay rounded in the file.
func XYZWrite(out io.Writer, coords *v3.Matrix, atoms Atomer) error {
	if coords.NVecs() != atoms.Len() {
		return CError{"Number of coordinates and atoms don't match", []string{"XYZWrite"}}
	}
	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "%-4d\n\n", atoms.Len())
	for i := 0; i < atoms.Len(); i++ {
		symbol := atoms.Atom(i).Symbol
		if symbol == "" {
			symbol = atoms.Atom(i).Name
		}
		fmt.Fprintf(w, "%-2s  %s %s %s\n", symbol, ffloat(coords.At(i, 0)), ffloat(coords.At(i, 1)), ffloat(coords.At(i, 2)))
	}
	if err := w.Flush(); err != nil {
		return CError{err.Error(), []string{"bufio.Flush", "XYZWrite"}}
	}
	return nil
}

func ffloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

//PDB files

// PDBFileWrite writes the coordinates coords of the atoms in a PDB file with name pdbname.
// If the box has non-zero lengths, a CRYST1 record is written.
func PDBFileWrite(pdbname string, coords *v3.Matrix, atoms Atomer, box [3]float64) error {
	out, err := os.Create(pdbname)
	if err != nil {
		return CError{err.Error(), []string{"os.Create", "PDBFileWrite"}}
	}
	defer out.Close()
	if err := PDBWrite(out, coords, atoms, box); err != nil {
		return errDecorate(err, "PDBFileWrite")
	}
	return nil
}

// PDBWrite writes the coordinates and atoms in PDB format to the out stream.
func PDBWrite(out io.Writer, coords *v3.Matrix, atoms Atomer, box [3]float64) error {
	if coords.NVecs() != atoms.Len() {
		return CError{"Number of coordinates and atoms don't match", []string{"PDBWrite"}}
	}
	w := bufio.NewWriter(out)
	fmt.Fprint(w, "REMARK     WRITTEN WITH COMMPARE\n")
	if box[0] > 0 && box[1] > 0 && box[2] > 0 {
		fmt.Fprintf(w, "CRYST1%9.3f%9.3f%9.3f%7.2f%7.2f%7.2f P 1           1\n", box[0], box[1], box[2], 90.0, 90.0, 90.0)
	}
	for i := 0; i < atoms.Len(); i++ {
		a := atoms.Atom(i)
		chain := a.Chain
		if chain == 0 {
			chain = ' '
		}
		name := a.Name
		//4 chars for the atom name are used when hydrogens are included.
		if len(name) < 4 {
			name = " " + name
		}
		fmt.Fprintf(w, "%-6s%5d %-4s %3s %1c%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s  \n", "ATOM", (i+1)%100000, trunc(name, 4),
			trunc(a.MolName, 3), chain, a.MolID%10000, coords.At(i, 0), coords.At(i, 1), coords.At(i, 2), 1.0, 0.0, a.Symbol)
	}
	fmt.Fprint(w, "END\n")
	if err := w.Flush(); err != nil {
		return CError{err.Error(), []string{"bufio.Flush", "PDBWrite"}}
	}
	return nil
}
