// Package record defines the canonical consumer record model shared by the
// ingestion, matching, and similarity layers.
//
// Both datasets under comparison are projected onto the same canonical
// schema via a FieldMapping, so the match engine never has to know which
// vendor's column naming a file arrived with.
package record

// Record is a normalized consumer record.
//
// All string fields are already normalized (see Normalize): an empty string
// means the source value was absent or whitespace-only, and is stored as
// NULL by the analysis store.
type Record struct {
	ID        string
	Title     string
	FirstName string
	Surname   string
	Gender    string
	EmailStd  string
	EmailHash string
	Mobile    string
	Landline  string
	Suburb    string
	State     string
	Postcode  string

	// Derived compound keys.
	FullName                 string
	NameSuburbPostcode       string
	NameSuburbPostcodeMobile string
}

// Columns lists the canonical column names in store order.
var Columns = []string{
	"id",
	"title",
	"first_name",
	"surname",
	"gender",
	"email_std",
	"email_hash",
	"mobile",
	"landline",
	"suburb",
	"state",
	"postcode",
	"full_name",
	"name_suburb_postcode",
	"name_suburb_postcode_mobile",
}

// Values returns the record's fields in Columns order. Empty strings are
// converted to nil so the store persists them as NULL.
func (r *Record) Values() []any {
	fields := []string{
		r.ID,
		r.Title,
		r.FirstName,
		r.Surname,
		r.Gender,
		r.EmailStd,
		r.EmailHash,
		r.Mobile,
		r.Landline,
		r.Suburb,
		r.State,
		r.Postcode,
		r.FullName,
		r.NameSuburbPostcode,
		r.NameSuburbPostcodeMobile,
	}
	values := make([]any, len(fields))
	for i, f := range fields {
		if f == "" {
			values[i] = nil
			continue
		}
		values[i] = f
	}
	return values
}

// HasName reports whether the record carries any identifying name data.
// Records without title, first name, and surname are dropped at ingest.
func (r *Record) HasName() bool {
	return r.Title != "" || r.FirstName != "" || r.Surname != ""
}
