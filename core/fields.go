package core

import (
	"fmt"
	"strings"
)

// Field identifies one source column of the pesticide registry.
type Field int

const (
	FieldNazwa Field = iota + 1
	FieldNrZezw
	FieldTerminZezw
	FieldTerminDoSprzedazy
	FieldTerminDoStosowania
	FieldRodzaj
	FieldSubstancjaCzynna
	FieldUprawa
	FieldAgrofag
	FieldDawka
	FieldTermin
)

var fieldSourceNames = map[Field]string{
	FieldNazwa:              "nazwa",
	FieldNrZezw:             "NrZezw",
	FieldTerminZezw:         "TerminZezw",
	FieldTerminDoSprzedazy:  "TerminDoSprzedazy",
	FieldTerminDoStosowania: "TerminDoStosowania",
	FieldRodzaj:             "Rodzaj",
	FieldSubstancjaCzynna:   "Substancja_czynna",
	FieldUprawa:             "uprawa",
	FieldAgrofag:            "agrofag",
	FieldDawka:              "dawka",
	FieldTermin:             "termin",
}

// TerminDoSprzedazy and TerminDoStosowania deliberately share a display name;
// see Schema for how the collision is resolved on output.
var fieldDisplayNames = map[Field]string{
	FieldNazwa:              "Nazwa",
	FieldNrZezw:             "Numer zezwolenia",
	FieldTerminZezw:         "Termin zezwolenia",
	FieldTerminDoSprzedazy:  "Termin dopuszczenia do sprzedaży",
	FieldTerminDoStosowania: "Termin dopuszczenia do sprzedaży",
	FieldRodzaj:             "Rodzaj",
	FieldSubstancjaCzynna:   "Substancja czynna",
	FieldUprawa:             "Uprawa",
	FieldAgrofag:            "Agrofag",
	FieldDawka:              "Dawka",
	FieldTermin:             "Termin stosowania",
}

// AllFields returns the keep-projection in output order.
func AllFields() []Field {
	return []Field{
		FieldNazwa,
		FieldNrZezw,
		FieldTerminZezw,
		FieldTerminDoSprzedazy,
		FieldTerminDoStosowania,
		FieldRodzaj,
		FieldSubstancjaCzynna,
		FieldUprawa,
		FieldAgrofag,
		FieldDawka,
		FieldTermin,
	}
}

// Valid reports whether f is one of the declared fields.
func (f Field) Valid() bool {
	_, ok := fieldSourceNames[f]
	return ok
}

// SourceName returns the workbook header of the field.
func (f Field) SourceName() string {
	if name, ok := fieldSourceNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// DefaultDisplayName returns the external name from the default display mapping.
func (f Field) DefaultDisplayName() string {
	return fieldDisplayNames[f]
}

func (f Field) String() string {
	return f.SourceName()
}

// FieldBySourceName resolves a workbook header to a Field, ignoring case.
func FieldBySourceName(name string) (Field, bool) {
	name = strings.TrimSpace(name)
	for _, f := range AllFields() {
		if strings.EqualFold(fieldSourceNames[f], name) {
			return f, true
		}
	}
	return 0, false
}
