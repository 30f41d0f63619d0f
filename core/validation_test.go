package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateColumns(t *testing.T) {
	full := make([]string, 0, len(AllFields()))
	for _, f := range AllFields() {
		full = append(full, f.SourceName())
	}

	tests := []struct {
		name    string
		columns []string
		wantErr error
	}{
		{
			name:    "all kept columns",
			columns: full,
			wantErr: nil,
		},
		{
			name:    "extra columns are allowed",
			columns: append(append([]string{}, full...), "NIE ŁADUJ"),
			wantErr: nil,
		},
		{
			name:    "empty column name",
			columns: append(append([]string{}, full...), " "),
			wantErr: ErrInvalidSchema,
		},
		{
			name:    "duplicate column",
			columns: append(append([]string{}, full...), "nazwa"),
			wantErr: ErrDuplicateColumn,
		},
		{
			name:    "missing kept column",
			columns: full[1:],
			wantErr: ErrMissingColumn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateColumns(DefaultSchema(), tt.columns)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateColumns_ListsEveryMissingColumn(t *testing.T) {
	err := ValidateColumns(DefaultSchema(), []string{"nazwa"})
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "NrZezw")
	assert.Contains(t, err.Error(), "termin")
}

func TestValidateRow(t *testing.T) {
	assert.NoError(t, ValidateRow([]Value{NullValue(), NullValue()}, 2))
	assert.ErrorIs(t, ValidateRow([]Value{NullValue()}, 2), ErrInvalidRow)
}

func TestLoadError(t *testing.T) {
	cause := fmt.Errorf("%w: %q", ErrSheetNotFound, "Rejestr_zastosowanie")
	err := error(&LoadError{Source: "rejestr.xlsx", Sheet: "Rejestr_zastosowanie", Err: cause})

	assert.ErrorIs(t, err, ErrLoad)
	assert.ErrorIs(t, err, ErrSheetNotFound)
	assert.Contains(t, err.Error(), "rejestr.xlsx")

	var loadErr *LoadError
	assert.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "Rejestr_zastosowanie", loadErr.Sheet)

	noSheet := &LoadError{Source: "x.xlsx", Err: errors.New("boom")}
	assert.Equal(t, "load x.xlsx: boom", noSheet.Error())
}

func TestIsCallerError(t *testing.T) {
	assert.True(t, IsCallerError(fmt.Errorf("%w: %q", ErrUnknownField, "kolor")))
	assert.True(t, IsCallerError(ErrEmptyQuery))
	assert.False(t, IsCallerError(fmt.Errorf("%w: %w", ErrDataUnavailable, &LoadError{Err: ErrSheetNotFound})))
	assert.False(t, IsCallerError(nil))
}
