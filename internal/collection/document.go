package collection

import "errors"

var (
	ErrNotFound = errors.New("document not found")
)

// Document is one schema-less record in a named collection. Fields holds the
// raw key/value payload; createdAt/updatedAt are stamped by the store and live
// inside Fields like any other key.
type Document struct {
	ID     string                 `json:"id"`
	Fields map[string]interface{} `json:"fields"`
}

// Field returns a named field or nil when absent.
func (d Document) Field(key string) interface{} {
	if d.Fields == nil {
		return nil
	}
	return d.Fields[key]
}

// StringField returns a field coerced to string ("" when absent or not a string).
func (d Document) StringField(key string) string {
	s, _ := d.Field(key).(string)
	return s
}
