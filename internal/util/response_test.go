package util

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordResponse(write func(c *gin.Context)) (*httptest.ResponseRecorder, Response) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	write(c)

	var body Response
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestSuccess(t *testing.T) {
	w, body := recordResponse(func(c *gin.Context) {
		Success(c, gin.H{"value": 1})
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, body.Code)
	assert.Equal(t, "success", body.Message)
	assert.NotNil(t, body.Data)
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name     string
		write    func(c *gin.Context)
		wantCode int
	}{
		{"unauthorized", Unauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden, http.StatusForbidden},
		{"not found", NotFound, http.StatusNotFound},
		{"internal", InternalServerError, http.StatusInternalServerError},
		{"bad request", func(c *gin.Context) { BadRequest(c, "bad input") }, http.StatusBadRequest},
		{"conflict", func(c *gin.Context) { Conflict(c, "already exists") }, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := recordResponse(tt.write)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}
