/*
 * doc.go, part of commpare
 *
 * Copyright 2025 Raul Mera A. (rmeraaatacademicosdotutadotcl)
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
Top is a package for reading and writing force-field topologies (not to be
confused with the chem Topology structure). Only Gromacs topologies can be
read/written. Bonded types ([ bondtypes ], [ pairtypes ], [ angletypes ],
[ dihedraltypes ] and [ constrainttypes ]) are read and written back, and
Flatten uses them to fill in the parameters of terms that don't carry
their own. #define macros used as parameters are expanded while reading.
Charmm special terms (cmap) are not supported.
*/
package top
