package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
	"github.com/lk2023060901/xdooria-arena/pkg/web/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(&Config{Mode: gin.TestMode}, logger.NewNoop(), nil)
	require.NoError(t, err)
	return s
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestResponseHelpers(t *testing.T) {
	s := newTestServer(t)
	s.Router().GET("/ok", func(c *gin.Context) { Success(c, gin.H{"n": 1}) })
	s.Router().GET("/full", func(c *gin.Context) { Error(c, errors.CodeCapacityExceeded, "roster is full") })

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, errors.CodeOK, resp.Code)
	assert.NotEmpty(t, resp.RequestID)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/full", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, errors.CodeCapacityExceeded, decode(t, rec).Code)
}

type bindReq struct {
	Count int `json:"count" binding:"required,min=1,max=10"`
}

func TestBindAndValidate(t *testing.T) {
	s := newTestServer(t)
	s.Router().POST("/bind", func(c *gin.Context) {
		var req bindReq
		if !BindAndValidate(c, &req) {
			return
		}
		Success(c, req.Count)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bind", jsonBody(`{"count":20}`))
	req.Header.Set("Content-Type", "application/json")
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, errors.CodeInvalidParams, resp.Code)
	assert.Contains(t, resp.Message, "count")
}

func TestCodeToStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, errors.CodeToStatus(errors.CodeNotFound))
	assert.Equal(t, http.StatusConflict, errors.CodeToStatus(errors.CodeConflict))
	assert.Equal(t, http.StatusBadRequest, errors.CodeToStatus(40077))
	assert.Equal(t, http.StatusInternalServerError, errors.CodeToStatus(50001))
}

func TestStartStop(t *testing.T) {
	s, err := NewServer(&Config{Host: "127.0.0.1", Port: 18089, Mode: gin.TestMode}, logger.NewNoop(), nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	require.NoError(t, s.Stop())
}

func jsonBody(s string) *strings.Reader {
	return strings.NewReader(s)
}
