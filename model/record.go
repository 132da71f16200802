package model

// Record is a flexible map representing one searchable item fetched from an
// upstream API (e.g., a vault item). Records have no fixed schema: values can
// be strings, numbers, booleans, nulls, or nested arrays/objects. Fields like
// "title" or "category" are accessed by their string keys when present.
// Example: rec["title"], rec["category"]
type Record map[string]interface{}

// GetString returns the value stored under key if it is a non-empty string.
func (r Record) GetString(key string) (string, bool) {
	if val, ok := r[key]; ok {
		if str, sok := val.(string); sok && str != "" {
			return str, true
		}
	}
	return "", false
}

// GetTitle returns the record's display title, checking the conventional
// identity fields in order ("title", then "name").
func (r Record) GetTitle() (string, bool) {
	if title, ok := r.GetString("title"); ok {
		return title, true
	}
	return r.GetString("name")
}

// GetCategory returns the record's category if it is stored as a string.
func (r Record) GetCategory() (string, bool) {
	return r.GetString("category")
}
