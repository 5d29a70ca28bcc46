// Package units converts physical quantities between named units.
package units

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/unit"
)

var (
	ErrUnknownUnit       = errors.New("unknown unit")
	ErrIncompatibleUnits = errors.New("incompatible units")
)

const (
	astronomicalUnit = 1.495978707e11
	lightYear        = 9.4607304725808e15
	parsec           = 3.0856775814913673e16
)

var registry = map[string]unit.Uniter{
	"m":        unit.Length(1),
	"km":       unit.Length(unit.Kilo),
	"cm":       unit.Length(unit.Centi),
	"mm":       unit.Length(unit.Milli),
	"um":       unit.Length(unit.Micro),
	"nm":       unit.Length(unit.Nano),
	"Angstrom": unit.Length(1e-10),
	"AU":       unit.Length(astronomicalUnit),
	"lyr":      unit.Length(lightYear),
	"pc":       unit.Length(parsec),
	"kpc":      unit.Length(unit.Kilo * parsec),
	"Mpc":      unit.Length(unit.Mega * parsec),

	"s":   unit.Time(1),
	"ms":  unit.Time(unit.Milli),
	"us":  unit.Time(unit.Micro),
	"min": unit.Time(60),
	"h":   unit.Time(3600),

	"kg": unit.Mass(1),
	"g":  unit.Mass(unit.Milli),
}

// Convert expresses value, measured in unit from, in unit to.
func Convert(value float64, from, to string) (float64, error) {
	src, err := lookup(from)
	if err != nil {
		return 0, err
	}
	dst, err := lookup(to)
	if err != nil {
		return 0, err
	}
	if !unit.DimensionsMatch(src, dst) {
		return 0, fmt.Errorf("%w: %s to %s", ErrIncompatibleUnits, from, to)
	}
	return value * src.Value() / dst.Value(), nil
}

// Factor is the number of to units in one from unit.
func Factor(from, to string) (float64, error) {
	return Convert(1, from, to)
}

// Known lists the registered unit names.
func Known() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(name string) (*unit.Unit, error) {
	u, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownUnit, name)
	}
	return u.Unit(), nil
}
