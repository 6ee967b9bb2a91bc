package domain

import "strings"

// BrowseQuery selects a window of documents from an index
type BrowseQuery struct {
	Offset int
	Limit  int
	// AttributesToRetrieve is nil when every field must be returned
	AttributesToRetrieve []string
}

// ParseAttributesToRetrieve splits a comma separated attribute list.
// An empty value or any "*" entry disables the projection.
func ParseAttributesToRetrieve(raw string) []string {
	if raw == "" {
		return nil
	}
	var names []string
	for _, name := range strings.Split(raw, ",") {
		if name == "*" {
			return nil
		}
		names = append(names, name)
	}
	return names
}
