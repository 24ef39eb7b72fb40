package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestEnvelope(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ok", func(c *gin.Context) { Success(c, http.StatusOK, gin.H{"n": 1}) })
	r.GET("/bad", func(c *gin.Context) {
		FailWithFields(c, http.StatusBadRequest, ErrValidation, map[string]string{"title": "required"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", "abc")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
	var ok Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	assert.Nil(t, ok.Error)
	assert.Equal(t, "abc", ok.Metadata.RequestID)
	assert.NotEmpty(t, ok.Metadata.Timestamp)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bad", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	var bad Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bad))
	require.NotNil(t, bad.Error)
	assert.Equal(t, ErrValidation, bad.Error.Code)
	assert.Equal(t, GetMessage(ErrValidation), bad.Error.Message)
	assert.Equal(t, "required", bad.Error.Fields["title"])
}

func TestGetMessage_Default(t *testing.T) {
	assert.Equal(t, "An unexpected error occurred.", GetMessage("NOPE"))
}

func TestRequestIDReplacesMalformedHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, RequestID(c)) })

	for _, in := range []string{"bad id\nwith newline", string(make([]byte, 100))} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", in)
		r.ServeHTTP(w, req)

		assert.NotEqual(t, in, w.Body.String())
		assert.Len(t, w.Body.String(), 36, "replaced by a UUID")
		assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))
	}
}
