package record

import "fmt"

// FieldMapping names the input columns that feed each canonical field.
// An empty column name leaves the canonical field NULL.
type FieldMapping struct {
	ID        string `koanf:"id"`
	Title     string `koanf:"title"`
	FirstName string `koanf:"first_name"`
	Surname   string `koanf:"surname"`
	Gender    string `koanf:"gender"`
	EmailStd  string `koanf:"email_std"`
	EmailHash string `koanf:"email_hash"`
	Mobile    string `koanf:"mobile"`
	Landline  string `koanf:"landline"`
	Suburb    string `koanf:"suburb"`
	State     string `koanf:"state"`
	Postcode  string `koanf:"postcode"`
}

// DataDirectMapping is the default column layout of DataDirect extracts.
func DataDirectMapping() FieldMapping {
	return FieldMapping{
		ID:        "ID",
		Title:     "Title",
		FirstName: "FirstName",
		Surname:   "Surname",
		Gender:    "Gender",
		EmailStd:  "EmailStd",
		EmailHash: "EmailHash",
		Mobile:    "Mobile",
		Landline:  "Landline",
		Suburb:    "Suburb",
		State:     "State",
		Postcode:  "Postcode",
	}
}

// AliveDataMapping is the default column layout of AliveData consumer files.
func AliveDataMapping() FieldMapping {
	return FieldMapping{
		ID:        "adId",
		Title:     "title",
		FirstName: "given_name_1",
		Surname:   "surname",
		Gender:    "gender",
		EmailStd:  "email",
		EmailHash: "email_sha256",
		Mobile:    "mobile_text",
		Landline:  "landline_text",
		Suburb:    "suburb",
		State:     "state",
		Postcode:  "postcode_text",
	}
}

// Validate checks that the mapping can produce identifiable records.
func (m FieldMapping) Validate() error {
	if m.Title == "" && m.FirstName == "" && m.Surname == "" {
		return fmt.Errorf("field mapping must bind at least one of title, first_name, surname")
	}
	return nil
}

// FromRow extracts a normalized Record from a row keyed by input column name.
// Values are stringified with fmt.Sprint so numeric parquet columns (ids,
// postcodes) survive the projection.
func (m FieldMapping) FromRow(row map[string]any) Record {
	get := func(col string) string {
		if col == "" {
			return ""
		}
		v, ok := row[col]
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprint(v)
	}

	return Normalize(Raw{
		ID:        get(m.ID),
		Title:     get(m.Title),
		FirstName: get(m.FirstName),
		Surname:   get(m.Surname),
		Gender:    get(m.Gender),
		EmailStd:  get(m.EmailStd),
		EmailHash: get(m.EmailHash),
		Mobile:    get(m.Mobile),
		Landline:  get(m.Landline),
		Suburb:    get(m.Suburb),
		State:     get(m.State),
		Postcode:  get(m.Postcode),
	})
}
