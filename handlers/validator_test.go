package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOpenAPI(t *testing.T) {
	doc, err := LoadOpenAPI()
	require.NoError(t, err)
	for _, path := range []string{
		"/v1/services",
		"/v1/services/{service}/table",
		"/v1/services/{service}/shards/{index}/instance",
		"/v1/services/{service}/shards/{index}/unreachable",
	} {
		assert.NotNil(t, doc.Paths.Find(path), path)
	}
}

func TestOpenAPIRequestValidator(t *testing.T) {
	doc, err := LoadOpenAPI()
	require.NoError(t, err)
	validator, err := OpenAPIRequestValidator(doc)
	require.NoError(t, err)

	tests := []struct {
		name           string
		method         string
		target         string
		body           string
		expectedStatus int
		requestError   bool
	}{
		{name: "valid add", method: http.MethodPost, target: "/v1/services/kv/shards/0/instance", body: `{"address":"10.0.0.1:7000"}`, expectedStatus: http.StatusOK},
		{name: "valid remove", method: http.MethodDelete, target: "/v1/services/kv/shards/65535/instance", expectedStatus: http.StatusOK},
		{name: "valid table", method: http.MethodGet, target: "/v1/services/kv/table", expectedStatus: http.StatusOK},
		{name: "missing address", method: http.MethodPost, target: "/v1/services/kv/shards/0/instance", body: `{}`, expectedStatus: http.StatusBadRequest, requestError: true},
		{name: "short address", method: http.MethodPost, target: "/v1/services/kv/shards/0/instance", body: `{"address":"a"}`, expectedStatus: http.StatusBadRequest, requestError: true},
		{name: "missing body", method: http.MethodPost, target: "/v1/services/kv/shards/0/instance", expectedStatus: http.StatusBadRequest, requestError: true},
		{name: "non integer index", method: http.MethodPost, target: "/v1/services/kv/shards/x/unreachable", expectedStatus: http.StatusBadRequest, requestError: true},
		{name: "negative index", method: http.MethodPost, target: "/v1/services/kv/shards/-1/unreachable", expectedStatus: http.StatusBadRequest, requestError: true},
		{name: "unknown path", method: http.MethodGet, target: "/v2/services", expectedStatus: http.StatusNotFound},
		{name: "method not allowed", method: http.MethodPut, target: "/v1/services/kv/table", expectedStatus: http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = httptest.NewRequest(tt.method, tt.target, nil)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			called := false
			err := validator(func(c echo.Context) error {
				called = true
				return nil
			})(c)

			if tt.expectedStatus == http.StatusOK {
				require.NoError(t, err)
				assert.True(t, called)
				return
			}
			require.Error(t, err)
			assert.False(t, called)
			var he *echo.HTTPError
			require.True(t, errors.As(err, &he))
			assert.Equal(t, tt.expectedStatus, he.Code)
			msg, _ := he.Message.(string)
			assert.NotContains(t, msg, "\n")
			var requestError *openapi3filter.RequestError
			assert.Equal(t, tt.requestError, errors.As(err, &requestError))
		})
	}
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "a", firstLine("a\nb\nc"))
	assert.Equal(t, "abc", firstLine("abc"))
	assert.Equal(t, "", firstLine(""))
}
