package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  Raw
		want Record
	}{
		{
			name: "uppercases and trims identity fields",
			raw: Raw{
				ID:        " 42 ",
				Title:     " mr ",
				FirstName: "  john ",
				Surname:   "smith  ",
				Gender:    "m",
				EmailStd:  " John.Smith@Example.com ",
				Suburb:    " newtown ",
				State:     "nsw",
				Postcode:  "2042",
			},
			want: Record{
				ID:                 "42",
				Title:              "MR",
				FirstName:          "JOHN",
				Surname:            "SMITH",
				Gender:             "M",
				EmailStd:           "JOHN.SMITH@EXAMPLE.COM",
				Suburb:             "NEWTOWN",
				State:              "NSW",
				Postcode:           "2042",
				FullName:           "JOHN SMITH",
				NameSuburbPostcode: "JOHN SMITH NEWTOWN 2042",
			},
		},
		{
			name: "phone fields are trimmed but not uppercased",
			raw: Raw{
				FirstName: "Ann",
				Surname:   "Lee",
				Mobile:    " 0412 345 678 ",
				Landline:  " (02) 9999 0000 ",
			},
			want: Record{
				FirstName: "ANN",
				Surname:   "LEE",
				Mobile:    "0412 345 678",
				Landline:  "(02) 9999 0000",
				FullName:  "ANN LEE",
			},
		},
		{
			name: "whitespace-only fields normalize to empty",
			raw: Raw{
				FirstName: "   ",
				Surname:   "Jones",
				EmailStd:  "  ",
			},
			want: Record{
				Surname: "JONES",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeCompoundKeysRequireAllComponents(t *testing.T) {
	// Missing suburb: name_suburb_postcode must be empty even though the
	// name and postcode are present.
	r := Normalize(Raw{
		FirstName: "Jane",
		Surname:   "Doe",
		Postcode:  "3000",
	})
	assert.Equal(t, "JANE DOE", r.FullName)
	assert.Empty(t, r.NameSuburbPostcode)
	assert.Empty(t, r.NameSuburbPostcodeMobile)

	full := Normalize(Raw{
		FirstName: "Jane",
		Surname:   "Doe",
		Suburb:    "Carlton",
		Postcode:  "3053",
		Mobile:    "0400000000",
	})
	assert.Equal(t, "JANE DOE CARLTON 3053", full.NameSuburbPostcode)
	assert.Equal(t, "JANE DOE CARLTON 3053 0400000000", full.NameSuburbPostcodeMobile)
}

func TestNormalizePostcode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2000", "2000"},
		{"2000.0", "2000"},
		{" 0800 ", "0800"},
		{"", ""},
		{"   ", ""},
		{"SW1A 1AA", "SW1A 1AA"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePostcode(tt.in), "input %q", tt.in)
	}
}

func TestRecordHasName(t *testing.T) {
	assert.False(t, (&Record{}).HasName())
	assert.True(t, (&Record{Title: "DR"}).HasName())
	assert.True(t, (&Record{FirstName: "SAM"}).HasName())
	assert.True(t, (&Record{Surname: "NG"}).HasName())
}

func TestRecordValuesNullsEmptyFields(t *testing.T) {
	r := Normalize(Raw{FirstName: "Amy", Surname: "Wu"})
	values := r.Values()
	require.Len(t, values, len(Columns))

	byCol := map[string]any{}
	for i, col := range Columns {
		byCol[col] = values[i]
	}
	assert.Equal(t, "AMY", byCol["first_name"])
	assert.Equal(t, "AMY WU", byCol["full_name"])
	assert.Nil(t, byCol["email_std"])
	assert.Nil(t, byCol["name_suburb_postcode"])
}
