/*
 * atomicdata.go, part of commpare.
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
	"slices"
	"strings"
	"unicode"
)

// symbolMass assigns mass to elements.
//Note that just common "bio-elements" are present
var symbolMass = map[string]float64{
	"H":  1.0,
	"C":  12.01,
	"O":  16.00,
	"N":  14.01,
	"P":  30.97,
	"S":  32.06,
	"Se": 78.96,
	"K":  39.1,
	"Ca": 40.08,
	"Mg": 24.30,
	"Cl": 35.45,
	"Na": 22.99,
	"Cu": 63.55,
	"Zn": 65.38,
	"Co": 58.93,
	"Fe": 55.84,
	"Mn": 54.94,
	"Cr": 51.996,
	"Si": 28.08,
	"Be": 9.012,
	"F":  18.998,
	"Br": 79.904,
	"I":  126.90,
}

// ionNames are the upper case atom names that are read as two-letter elements.
var ionNames = []string{"CL", "NA", "ZN", "MG", "BR", "FE", "MN", "SE"}

// symbolFromName tries to guess a chemical element symbol from an atom name.
// It only deals with the elements in symbolMass.
func symbolFromName(name string) (string, error) {
	n := strings.TrimLeft(name, "0123456789")
	if n == "" {
		return "", CError{"Empty atom name", []string{"symbolFromName"}}
	}
	if len(n) >= 2 {
		two := strings.ToUpper(n[:1]) + strings.ToLower(n[1:2])
		_, ok := symbolMass[two]
		if ok && (unicode.IsLower(rune(n[1])) || slices.Contains(ionNames, n)) {
			return two, nil
		}
	}
	one := strings.ToUpper(n[:1])
	if _, ok := symbolMass[one]; ok {
		return one, nil
	}
	return "", CError{"Couldn't guess symbol from name " + name, []string{"symbolFromName"}}
}

// MassFromSymbol returns the mass of the element with the given symbol, or 0
// if the element is not known.
func MassFromSymbol(symbol string) float64 {
	return symbolMass[symbol]
}
