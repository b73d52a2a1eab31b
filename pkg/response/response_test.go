package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"relgraph/internal/apperror"
	"relgraph/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", apperror.NotFound("status %q", "x"), http.StatusNotFound},
		{"validation", apperror.Validation("bad slug"), http.StatusBadRequest},
		{"login required", apperror.ErrLoginRequired, http.StatusUnauthorized},
		{"storage", apperror.Storage("add", errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			FromError(c, tt.err)

			assert.Equal(t, tt.code, w.Code)
			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.Empty(t, body.Error, "details hidden outside debug mode")
		})
	}
}

func TestFilterUsers(t *testing.T) {
	users := []model.User{{ID: 1, Username: "alice"}, {ID: 2, Username: "bob"}}
	out := FilterUsers(users)
	require.Len(t, out, 2)
	assert.Equal(t, "bob", out[1].Username)
	assert.Nil(t, FilterUserInfo(nil))
}
