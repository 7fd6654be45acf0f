package logger_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sitekit/sitekit/pkg/logger"
)

func TestGroup(t *testing.T) {
	t.Parallel()

	attr := logger.Group("g", slog.String("a", "b"))
	assert.Equal(t, "g", attr.Key)
	assert.Equal(t, slog.KindGroup, attr.Value.Kind())
}

func TestErrors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.Errors(nil, nil))

	attr := logger.Errors(nil, errors.New("boom"))
	assert.Equal(t, "errors", attr.Key)
	group := attr.Value.Group()
	assert.Len(t, group, 1)
	assert.Equal(t, "1", group[0].Key)
}

func TestError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.Error(nil))
	assert.Equal(t, "error", logger.Error(errors.New("x")).Key)
}

func TestDomainAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(7), logger.TenantID(7).Value.Int64())
	assert.Equal(t, int64(9), logger.BindingID(9).Value.Int64())
	assert.Equal(t, "acme.example.com", logger.Domain("acme.example.com").Value.String())
	assert.Equal(t, slog.Attr{}, logger.Domain(""))
	assert.Equal(t, "binding", logger.ResolvedBy("binding").Value.String())
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.RequestID(nil))
	assert.Equal(t, "abc", logger.RequestID("abc").Value.String())
}
