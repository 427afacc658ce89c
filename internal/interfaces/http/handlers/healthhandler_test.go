package handlers

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"bizhub/internal/interfaces/http/handlers/testutil"
	"bizhub/internal/shared/errors"
	"bizhub/internal/shared/logger"
)

func TestHealthHandler_Readyz(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return stderrors.New("dial tcp: refused") }

	h := NewHealthHandler(map[string]ReadinessCheck{"directory": ok}, logger.NewNopLogger())
	c, w := testutil.NewTestContext(http.MethodGet, "/readyz", nil)
	h.Readyz(c)
	assert.Equal(t, http.StatusOK, w.Code)

	h = NewHealthHandler(map[string]ReadinessCheck{"directory": ok, "redis": down}, logger.NewNopLogger())
	c, w = testutil.NewTestContext(http.MethodGet, "/readyz", nil)
	h.Readyz(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, string(errors.CodeConnectionUnavailable), testutil.ErrorCode(w))
	assert.Contains(t, w.Body.String(), `"redis":"unavailable"`)
}
