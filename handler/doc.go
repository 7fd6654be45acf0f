// Package handler provides typed HTTP handlers for JSON APIs.
//
// A HandlerFunc receives a request struct filled by binders and returns a
// Response. Errors returned through Error or reported by binders reach the
// configured ErrorHandler, which logs them and renders JSONError. ErrorStatus
// maps them to status codes:
//
//	type addRequest struct {
//		TenantID int64  `path:"tenantID"`
//		Domain   string `json:"domain"`
//	}
//
//	func add(ctx handler.Context, req addRequest) handler.Response {
//		b, err := svc.Add(ctx, req.TenantID, req.Domain)
//		if err != nil {
//			return handler.JSONError(handler.Conflict("domain_conflict", err))
//		}
//		return handler.JSON(b, handler.WithJSONStatus(http.StatusCreated))
//	}
//
//	r.Post("/", handler.Wrap(add, handler.WithBinders[addRequest](
//		binder.Path(chi.URLParam),
//		binder.BindJSON(),
//	)))
//
// Every response uses the envelope {"data": ..., "meta": ..., "error": {...}}.
package handler
