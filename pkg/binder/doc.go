// Package binder fills request structs from JSON bodies, query strings and
// router path parameters.
//
//	type updateRequest struct {
//		TenantID  int64 `path:"tenantID"`
//		DomainID  int64 `path:"domainID"`
//		IsPrimary *bool `json:"is_primary"`
//	}
//
//	handler.Wrap(h, handler.WithBinders[updateRequest](
//		binder.Path(chi.URLParam),
//		binder.BindJSON(),
//	))
//
// Pointer fields stay nil when a value is absent, so callers can tell
// "not provided" from a zero value.
package binder
