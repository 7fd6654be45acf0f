package binder

import "net/http"

// BindQuery binds `query:"name"` tagged fields from the URL query string.
// Slices accept repeated or comma separated values.
func BindQuery() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", r.URL.Query(), ErrFailedToParseQuery)
	}
}
