package models

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
)

// States lists the canonical Australian state and territory codes.
var States = []string{"NSW", "VIC", "QLD", "SA", "WA", "TAS", "ACT", "NT"}

var stateNames = map[string]string{
	"NSW": "new south wales",
	"VIC": "victoria",
	"QLD": "queensland",
	"SA":  "south australia",
	"WA":  "western australia",
	"TAS": "tasmania",
	"ACT": "australian capital territory",
	"NT":  "northern territory",
}

var stateLookup = buildStateLookup()

func buildStateLookup() map[string]string {
	fold := cases.Fold()
	lookup := make(map[string]string, len(stateNames)*2)
	for code, name := range stateNames {
		lookup[fold.String(code)] = code
		lookup[fold.String(name)] = code
	}
	return lookup
}

// NormalizeState maps a state abbreviation or full name, in any letter case,
// to its canonical code.
func NormalizeState(in string) (string, error) {
	key := cases.Fold().String(strings.Join(strings.Fields(in), " "))
	if code, ok := stateLookup[key]; ok {
		return code, nil
	}
	return "", Invalidf("invalid state name %q, please use Australian states and territories", in)
}

// ValidateStateField is the "austate" validator tag.
func ValidateStateField(fl validator.FieldLevel) bool {
	_, err := NormalizeState(fl.Field().String())
	return err == nil
}
