package helpers

import "database/sql"

// GetContentNullString converts a string value to sql.NullString.
// An empty string is stored as NULL.
func GetContentNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// StringValue dereferences a nullable column, mapping NULL to "".
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
