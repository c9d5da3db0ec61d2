/*
 * gromacsheaders.go, part of commpare
 *
 *
 * Copyright 2024 Raul Mera  <rmeraa{at}academicos(dot)uta(dot)cl>
 *
 *
 *  This program is free software; you can redistribute it and/or modify
 *  it under the terms of the GNU Lesser General Public License as published by
 *  the Free Software Foundation; either version 3 of the License, or
 *  (at your option) any later version.
 *
 *  This program is distributed in the hope that it will be useful,
 *  but WITHOUT ANY WARRANTY; without even the implied warranty of
 *  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 *  GNU General Public License for more details.
 *
 *  You should have received a copy of the GNU General Public License along
 *  with this program; if not, write to the Free Software Foundation, Inc.,
 *  51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 *
 *
 */

package top

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Utility functions

var fi func(string) []string = strings.Fields
var sf func(string, ...any) string = fmt.Sprintf

func qerr(err error) {
	if err != nil {
		panic(err.Error())
	}
}

func parseints(s ...string) ([]int, error) {
	r := make([]int, 0, len(s))
	for _, v := range s {
		i, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		r = append(r, i)
	}
	return r, nil
}

func parsefloats(s ...string) ([]float64, error) {
	r := make([]float64, 0, len(s))
	for _, v := range s {
		i, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, err
		}
		r = append(r, i)
	}
	return r, nil
}

// Returns a string without gromacs comments (sequences starting with ';'),
// trailing and leading spaces, tabs and newlines
func cleanString(s string) string {
	f := strings.Split(s, ";")[0]
	return strings.Trim(f, "\r\n\t ")

}

type topHeader struct {
	wany *regexp.Regexp
	spec map[string]*regexp.Regexp
}

func newTopHeader() *topHeader {
	T := new(topHeader)
	hre := func(name string) *regexp.Regexp {
		return regexp.MustCompile(`^\[\p{Zs}*` + name + `\p{Zs}*\]$`)
	}
	T.wany = regexp.MustCompile(`^\[\p{Zs}*.*\p{Zs}*\]$`)
	T.spec = map[string]*regexp.Regexp{
		"defaults":        hre("defaults"),
		"atomtypes":       hre("atomtypes"),
		"nonbond_params":  hre("nonbond_params"),
		"bondtypes":       hre("bondtypes"),
		"pairtypes":       hre("pairtypes"),
		"angletypes":      hre("angletypes"),
		"dihedraltypes":   hre("dihedraltypes"),
		"constrainttypes": hre("constrainttypes"),
		"moleculetype":    hre("moleculetype"),
		"atoms":           hre("atoms"),
		"bonds":           hre("bonds"),
		"pairs":           hre("pairs"),
		"angles":          hre("angles"),
		"dihedrals":       hre("dihedrals"),
		"constraints":     hre("constraints"),
		"settles":         hre("settles"),
		"exclusions":      hre("exclusions"),
		"system":          hre("system"),
		"molecules":       hre("molecules"),
	}
	return T
}

// Returns true if the line is a Gromacs header. It discards comments.
func (T *topHeader) Is(line string) bool {
	return T.wany.MatchString(cleanString(line))
}

// Returns a string indicating which Gromacs top file header
// the line is, or an empty string if the line is not a header, or
// it is an unsupported one.
func (T *topHeader) Which(line string) string {
	line = cleanString(line)
	if !T.wany.MatchString(line) {
		return ""
	}
	for k, v := range T.spec {
		if v.MatchString(line) {
			return k
		}
	}
	return ""
}

// StringReader is what the topology reader needs. *bufio.Reader implements it.
type StringReader interface {
	ReadString(byte) (string, error)
}
