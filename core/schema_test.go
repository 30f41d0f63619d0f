package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSchema(t *testing.T) {
	s := DefaultSchema()

	assert.Equal(t, AllFields(), s.Fields())
	assert.Equal(t, "Numer zezwolenia", s.DisplayName(FieldNrZezw))
	assert.Equal(t, "Termin stosowania", s.OutputKey(FieldTermin))
}

func TestSchema_DisplayCollision(t *testing.T) {
	s := DefaultSchema()

	// Both fields keep the shared display name
	assert.Equal(t, s.DisplayName(FieldTerminDoSprzedazy), s.DisplayName(FieldTerminDoStosowania))

	// but are emitted under distinct keys
	assert.Equal(t, "Termin dopuszczenia do sprzedaży", s.OutputKey(FieldTerminDoSprzedazy))
	assert.Equal(t, "Termin dopuszczenia do sprzedaży (TerminDoStosowania)", s.OutputKey(FieldTerminDoStosowania))
	assert.Equal(t, []Field{FieldTerminDoStosowania}, s.Collisions())

	keys := s.OutputKeys()
	seen := make(map[string]bool)
	for _, k := range keys {
		assert.False(t, seen[k], "duplicate key %q", k)
		seen[k] = true
	}
}

func TestSchema_DisplayOverrideResolvesCollision(t *testing.T) {
	s, err := NewSchema(WithDisplayName(FieldTerminDoStosowania, "Termin dopuszczenia do stosowania"))
	require.NoError(t, err)

	assert.Empty(t, s.Collisions())
	assert.Equal(t, "Termin dopuszczenia do stosowania", s.OutputKey(FieldTerminDoStosowania))
}

func TestNewSchema_Invalid(t *testing.T) {
	tests := []struct {
		name string
		opts []SchemaOption
	}{
		{name: "no fields", opts: []SchemaOption{WithFields()}},
		{name: "unknown field", opts: []SchemaOption{WithFields(Field(99))}},
		{name: "field twice", opts: []SchemaOption{WithFields(FieldNazwa, FieldNazwa)}},
		{name: "empty display name", opts: []SchemaOption{WithDisplayName(FieldNazwa, "  ")}},
		{name: "display name for unknown field", opts: []SchemaOption{WithDisplayName(Field(0), "X")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchema(tt.opts...)
			assert.ErrorIs(t, err, ErrInvalidSchema)
		})
	}
}

func TestSchema_ParseField(t *testing.T) {
	s := DefaultSchema()

	tests := []struct {
		input string
		want  Field
	}{
		{input: "uprawa", want: FieldUprawa},
		{input: "Uprawa", want: FieldUprawa},
		{input: " UPRAWA ", want: FieldUprawa},
		{input: "Substancja_czynna", want: FieldSubstancjaCzynna},
		{input: "Substancja czynna", want: FieldSubstancjaCzynna},
		{input: "Numer zezwolenia", want: FieldNrZezw},
		{input: "TerminDoStosowania", want: FieldTerminDoStosowania},
		{input: "Termin dopuszczenia do sprzedaży", want: FieldTerminDoSprzedazy},
		{input: "Termin dopuszczenia do sprzedaży (TerminDoStosowania)", want: FieldTerminDoStosowania},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := s.ParseField(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSchema_ParseField_Unknown(t *testing.T) {
	restricted, err := NewSchema(WithFields(FieldNazwa, FieldUprawa))
	require.NoError(t, err)

	for _, name := range []string{"kolor", "", "agrofag"} {
		_, err := restricted.ParseField(name)
		assert.ErrorIs(t, err, ErrUnknownField, name)
	}
}

func TestFieldBySourceName(t *testing.T) {
	f, ok := FieldBySourceName("NRZEZW")
	require.True(t, ok)
	assert.Equal(t, FieldNrZezw, f)

	_, ok = FieldBySourceName("Nazwa handlowa")
	assert.False(t, ok)

	assert.Equal(t, "Field(42)", Field(42).String())
	assert.False(t, Field(42).Valid())
}
