package vkid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL})
}

func TestClient_GetUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users.get", r.URL.Path)
		q := r.URL.Query()
		assert.False(t, q.Has("user_ids"), "the token owner is resolved by VK")
		assert.Equal(t, "tok", q.Get("access_token"))
		assert.Equal(t, APIVersion, q.Get("v"))
		assert.Equal(t, "photo_200,email", q.Get("fields"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":[{"id":12345,"first_name":"Иван","last_name":"Петров","photo_200":"https://vk.example/p.jpg"}]}`))
	})

	user, err := client.GetUser(context.Background(), "tok", "12345")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), user.ID)
	assert.Equal(t, "Иван Петров", user.FullName())
	assert.Equal(t, "https://vk.example/p.jpg", user.Photo200)
	assert.Empty(t, user.Email)
}

func TestClient_GetUser_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		wantErr error
	}{
		{name: "API error object", body: `{"error":{"error_code":5,"error_msg":"User authorization failed"}}`, status: http.StatusOK, wantErr: ErrAPIError},
		{name: "Empty response", body: `{"response":[]}`, status: http.StatusOK, wantErr: ErrUserNotFound},
		{name: "Server error", body: `oops`, status: http.StatusBadGateway, wantErr: ErrAPIError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			user, err := client.GetUser(context.Background(), "tok", "1")
			assert.Nil(t, user)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_GetUser_TokenOfAnotherUser(t *testing.T) {
	// the token belongs to VK user 1 whatever user_ids says
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "attacker-token", r.URL.Query().Get("access_token"))
		_, _ = w.Write([]byte(`{"response":[{"id":1,"first_name":"Mallory"}]}`))
	})

	user, err := client.GetUser(context.Background(), "attacker-token", "777")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrUserMismatch)

	user, err = client.GetUser(context.Background(), "attacker-token", "1")
	require.NoError(t, err)
	assert.Equal(t, "1", user.IDString())
}

func TestClient_GetUser_MissingParams(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:0"})

	_, err := client.GetUser(context.Background(), "", "1")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = client.GetUser(context.Background(), "tok", "")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestPlaceholderEmail(t *testing.T) {
	assert.Equal(t, "vk777@vk.placeholder.com", PlaceholderEmail("777"))
}
