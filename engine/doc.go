/*
 * doc.go, part of commpare.
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
Package engine drives molecular mechanics engines (Gromacs, OpenMM, HOOMD and
Cassandra) through a single-point energy evaluation of a structure, and
translates the energy terms each engine reports into a common set of
components: bond, angle, dihedral, LJ, QQ, nonbond and all.

Each engine is reached through a Handle, which, much like the handles for
QM programs, builds the input for the engine in a Sandbox, runs it, and
reads the energy back. The engines themselves, which must be obtained
independently from their respective distributors, are never linked, only
executed, either as programs or as Python scripts.

All energies are reported in kJ/mol.
*/
package engine
