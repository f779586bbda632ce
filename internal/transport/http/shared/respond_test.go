package shared

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "domaindesk/pkg/domain-errors"
	"domaindesk/pkg/requestcontext"
)

func TestWriteErrorMapsCodes(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"not found", dErrors.New(dErrors.CodeNotFound, "Domain not found"), http.StatusNotFound, `{"message":"Domain not found"}`},
		{"conflict", dErrors.New(dErrors.CodeConflict, "Domain with this slug already exists"), http.StatusConflict, `{"message":"Domain with this slug already exists"}`},
		{"validation", dErrors.New(dErrors.CodeValidation, "Name and slug are required"), http.StatusBadRequest, `{"message":"Name and slug are required"}`},
		{"internal keeps safe message", dErrors.Wrap(errors.New("pq: timeout"), dErrors.CodeInternal, "Failed to fetch domains"), http.StatusInternalServerError, `{"message":"Failed to fetch domains"}`},
		{"uncoded", errors.New("boom"), http.StatusInternalServerError, `{"message":"Internal server error"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tc.err)
			assert.Equal(t, tc.status, rec.Code)
			assert.JSONEq(t, tc.body, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"example.com"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "example.com", dst.Name)

	empty := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	err := DecodeJSON(empty, &dst)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	bad := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{bad"))
	err = DecodeJSON(bad, &dst)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestWriteServiceErrorLogsByCode(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := requestcontext.WithRequestID(context.Background(), "req-9")

	rec := httptest.NewRecorder()
	WriteServiceError(ctx, logger, rec, dErrors.Wrap(errors.New("pq: broken"), dErrors.CodeInternal, "Failed to delete domain"), "delete domain")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "request_id=req-9")

	buf.Reset()
	rec = httptest.NewRecorder()
	WriteServiceError(ctx, logger, rec, dErrors.New(dErrors.CodeNotFound, "Domain not found"), "delete domain")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, buf.String(), "level=WARN")
}
