package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitekit/sitekit/handler"
	"github.com/sitekit/sitekit/pkg/binder"
)

type echoRequest struct {
	ID   int64  `path:"id"`
	Name string `json:"name"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.JSONResponse {
	t.Helper()
	var body handler.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestWrap(t *testing.T) {
	t.Parallel()

	pathParam := func(_ *http.Request, name string) string {
		if name == "id" {
			return "7"
		}
		return ""
	}

	h := handler.Wrap(func(ctx handler.Context, req echoRequest) handler.Response {
		return handler.JSON(req, handler.WithJSONStatus(http.StatusCreated))
	}, handler.WithBinders[echoRequest](binder.Path(pathParam), binder.BindJSON()))

	t.Run("binds and renders", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"acme"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		body := decode(t, w)
		assert.Equal(t, map[string]any{"ID": float64(7), "name": "acme"}, body.Data)
	})

	t.Run("binder failure is bad request", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`not json`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_request", decode(t, w).Error.Code)
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()

		nilHandler := handler.Wrap(func(ctx handler.Context, req struct{}) handler.Response { return nil })
		w := httptest.NewRecorder()
		nilHandler(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("error response goes through error handler", func(t *testing.T) {
		t.Parallel()

		var handled error
		failing := handler.Wrap(func(ctx handler.Context, req struct{}) handler.Response {
			return handler.Error(handler.Conflict("taken", errors.New("domain is taken")))
		}, handler.WithErrorHandler[struct{}](func(ctx handler.Context, err error) {
			handled = err
			_ = handler.JSONError(err).Render(ctx.ResponseWriter(), ctx.Request())
		}))

		w := httptest.NewRecorder()
		failing(w, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusConflict, w.Code)
		require.Error(t, handled)
		assert.Equal(t, "domain is taken", decode(t, w).Error.Message)
	})

	t.Run("decorators run outermost first", func(t *testing.T) {
		t.Parallel()

		var order []string
		mark := func(name string) handler.Decorator[struct{}] {
			return func(next handler.HandlerFunc[struct{}]) handler.HandlerFunc[struct{}] {
				return func(ctx handler.Context, req struct{}) handler.Response {
					order = append(order, name)
					return next(ctx, req)
				}
			}
		}

		decorated := handler.Wrap(func(ctx handler.Context, req struct{}) handler.Response {
			return handler.Empty()
		}, handler.WithDecorators(mark("outer"), mark("inner")))

		w := httptest.NewRecorder()
		decorated(w, httptest.NewRequest(http.MethodDelete, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, []string{"outer", "inner"}, order)
	})
}

func TestErrorStatus(t *testing.T) {
	t.Parallel()

	status, detail := handler.ErrorStatus(handler.Conflict("domain_conflict", errors.New("already bound")))
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "domain_conflict", detail.Code)
	assert.Equal(t, "already bound", detail.Message)

	status, detail = handler.ErrorStatus(handler.NewHTTPError(http.StatusServiceUnavailable, "unavailable", errors.New("secret dsn")))
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.NotContains(t, detail.Message, "secret")

	verr := handler.NewValidationError()
	verr.Add("domain", "must include a top-level suffix")
	status, detail = handler.ErrorStatus(verr)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, []string{"must include a top-level suffix"}, detail.Details["domain"])
	assert.True(t, verr.Has("domain"))
	assert.False(t, verr.IsEmpty())

	status, detail = handler.ErrorStatus(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal_error", detail.Code)
}

func TestJSONError(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	err := handler.JSONError(handler.NotFound("domain_not_found", errors.New("domain not found")),
		handler.WithJSONMeta(map[string]any{"tenant_id": 1}),
	).Render(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, "domain_not_found", body.Error.Code)
	assert.Equal(t, float64(1), body.Meta["tenant_id"])
}
