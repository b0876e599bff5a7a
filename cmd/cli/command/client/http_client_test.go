package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloghub/internal/microservices/http-api/dto"
)

func TestHTTPClient_ConfirmComment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/comments/7/confirm", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(dto.CommentResponse{ID: 7, Confirmed: true})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	c.SetToken("secret-token")

	got, err := c.ConfirmComment(7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	assert.True(t, got.Confirmed)
}

func TestHTTPClient_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"comment already confirmed"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL).ConfirmComment(7)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "comment already confirmed", apiErr.Message)
}

func TestHTTPClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req dto.LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "admin@example.com", req.Email)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_ = json.NewEncoder(w).Encode(dto.AuthResponse{AccessToken: "tok", TokenType: "Bearer", ExpiresIn: 60})
	}))
	defer srv.Close()

	resp, err := NewHTTPClient(srv.URL).Login(&LoginRequest{Email: "admin@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.AccessToken)
	assert.Equal(t, int64(60), resp.ExpiresIn)
}
