package record

import (
	"strconv"
	"strings"
)

// upperTrim uppercases and trims a raw field value. Whitespace-only input
// normalizes to the empty string.
func upperTrim(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// joinKey concatenates non-empty parts with single spaces, then applies the
// same UPPER(TRIM()) treatment the individual fields get. Any empty part
// makes the key empty: a compound key is only meaningful when every
// component is present.
func joinKey(parts ...string) string {
	for _, p := range parts {
		if p == "" {
			return ""
		}
	}
	return upperTrim(strings.Join(parts, " "))
}

// NormalizePostcode coerces a raw postcode value to its canonical string
// form. Numeric columns frequently surface as floats ("2000.0"); the
// decimal artifact is stripped.
func NormalizePostcode(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

// Raw holds unnormalized field values pulled out of an input row.
type Raw struct {
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
}

// Normalize builds a canonical Record from raw field values.
//
// Normalization mirrors the analysis store's original load rules:
// UPPER(TRIM()) on title, names, gender, email, email hash, suburb, and
// state; TRIM() only on phone fields; postcode stringified. Compound keys
// are derived from the already-normalized components.
func Normalize(raw Raw) Record {
	r := Record{
		ID:        strings.TrimSpace(raw.ID),
		Title:     upperTrim(raw.Title),
		FirstName: upperTrim(raw.FirstName),
		Surname:   upperTrim(raw.Surname),
		Gender:    upperTrim(raw.Gender),
		EmailStd:  upperTrim(raw.EmailStd),
		EmailHash: upperTrim(raw.EmailHash),
		Mobile:    strings.TrimSpace(raw.Mobile),
		Landline:  strings.TrimSpace(raw.Landline),
		Suburb:    upperTrim(raw.Suburb),
		State:     upperTrim(raw.State),
		Postcode:  NormalizePostcode(raw.Postcode),
	}

	r.FullName = joinKey(r.FirstName, r.Surname)
	r.NameSuburbPostcode = joinKey(r.FirstName, r.Surname, r.Suburb, r.Postcode)
	r.NameSuburbPostcodeMobile = joinKey(r.FirstName, r.Surname, r.Suburb, r.Postcode, r.Mobile)

	return r
}
