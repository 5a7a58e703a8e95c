// Package questionnaire submits the diet-intake form to the backend.
package questionnaire

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Field names of the questionnaire form.
const (
	FieldBreed  = "breed_name_AKC"
	FieldAge    = "age_years_preReg"
	FieldStatus = "status_dietRelat_preReg"
)

// ErrInvalidAge is returned when the age field does not hold a finite number.
var ErrInvalidAge = errors.New("age must be a number")

// Record is the payload of POST /api/submit-dog-info.
type Record struct {
	BreedName   string   `json:"breed_name_AKC"`
	AgeYears    float64  `json:"age_years_preReg"`
	StatusFlags []string `json:"status_dietRelat_preReg"`
}

// FormReader is the part of a form the questionnaire reads.
type FormReader interface {
	Get(name string) string
	GetAll(name string) []string
}

// BuildRecord reads the questionnaire fields. Status flags keep the order the
// form lists them in; an empty selection is an empty array, never null.
func BuildRecord(f FormReader) (Record, error) {
	age, err := parseAge(f.Get(FieldAge))
	if err != nil {
		return Record{}, err
	}

	flags := f.GetAll(FieldStatus)
	if flags == nil {
		flags = []string{}
	}

	return Record{
		BreedName:   f.Get(FieldBreed),
		AgeYears:    age,
		StatusFlags: flags,
	}, nil
}

func parseAge(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	age, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(age) || math.IsInf(age, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAge, raw)
	}
	return age, nil
}
