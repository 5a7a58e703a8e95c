// Package breedadmin sends partial updates to breed records and reads them back.
package breedadmin

import (
	"errors"

	"github.com/whiskerworthy/dogdiet/internal/form"
)

// Field names that address the record rather than change it.
const (
	FieldSearchField = "search_field"
	FieldSearchValue = "search_value"
)

// Search fields the backend accepts.
const (
	SearchByName     = "breed_name_AKC"
	SearchByDogAPIID = "dogapi_id"
)

// Updatable breed columns, in the order the admin page lists them.
var UpdatableFields = []string{
	"breed_otherNames",
	"breed_group_AKC",
	"breed_size_categ_AKC",
	"breed_life_expect_yrs",
	"food_recomm_brand",
	"food_recomm_product",
	"food_recomm_format",
	"listed_DogDiet_MVP",
}

var (
	// ErrNoChanges is returned when every updatable field is empty.
	ErrNoChanges = errors.New("no fields to update")
	// ErrMissingSearchKey is returned when search_field or search_value is empty.
	ErrMissingSearchKey = errors.New("search field and value are required")
)

// UpdateRequest addresses one breed and carries the fields to change.
type UpdateRequest struct {
	SearchField string
	SearchValue string
	Changes     map[string]string
}

// Form is the part of a form the admin flow reads and clears.
type Form interface {
	Get(name string) string
	Entries() []form.Field
	Reset()
}

// BuildUpdate collects every non-empty field except the search key. When a
// name repeats, the later value wins.
func BuildUpdate(f Form) (UpdateRequest, error) {
	req := UpdateRequest{
		SearchField: f.Get(FieldSearchField),
		SearchValue: f.Get(FieldSearchValue),
		Changes:     make(map[string]string),
	}

	for _, fl := range f.Entries() {
		if fl.Name == FieldSearchField || fl.Name == FieldSearchValue {
			continue
		}
		if fl.Value == "" {
			continue
		}
		req.Changes[fl.Name] = fl.Value
	}

	if len(req.Changes) == 0 {
		return req, ErrNoChanges
	}
	if req.SearchField == "" || req.SearchValue == "" {
		return req, ErrMissingSearchKey
	}
	return req, nil
}

// IsValidation reports whether err was raised before any request was sent.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNoChanges) || errors.Is(err, ErrMissingSearchKey)
}
