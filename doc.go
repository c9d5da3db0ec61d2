/*
 * doc.go, part of commpare.
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

/*
Package chem is the root package of commpare. It provides the atom and molecule
structures that the energy-comparison harness hands to the simulation engines,
plus the handful of coordinate files the engines need as input.

	**Capabilities**

    Reads Gromacs gro files (first frame, orthorhombic box).

    Writes gro, XYZ and PDB files. XYZ files are written with the shortest
    exact representation of each coordinate, so a rounded molecule stays
    rounded in the file.

    Rounds all coordinates of a molecule to a given number of decimals.

    Unit conversion constants for the units used by the different engines.

The engines themselves are driven by the engine package, and the comparison of
their results by the compare package. Coordinates are kept in a v3.Matrix,
which is based on gonum's mat.Dense. Each row of a v3.Matrix represents one
point in space, in A.
*/
package chem
