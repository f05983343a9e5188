package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecocycle/connect/internal/credentials"
	"github.com/ecocycle/connect/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *credentials.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := credentials.NewMemoryStore()
	client, err := New(srv.URL+"/api", store, WithTimeout(5*time.Second))
	require.NoError(t, err)
	return client, store
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_Validation(t *testing.T) {
	store := credentials.NewMemoryStore()

	_, err := New("ftp://example.com", store)
	assert.Error(t, err)
	_, err = New("http://", store)
	assert.Error(t, err)
	_, err = New("http://localhost:5000/api", nil)
	assert.Error(t, err)

	c, err := New("http://localhost:5000/api", store)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/api", c.BaseURL())
}

func TestTransport_AttachesBearerToken(t *testing.T) {
	var gotAuth atomic.Value
	client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		assert.Equal(t, "/api/auth/me", r.URL.Path)
		writeJSON(w, http.StatusOK, types.Identity{ID: "u1", Email: "a@b.com", Role: types.RoleArtisan})
	})

	_, err := client.CurrentIdentity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", gotAuth.Load())

	require.NoError(t, store.Save("tok-123", credentials.Ephemeral))
	identity, err := client.CurrentIdentity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth.Load())
	assert.Equal(t, "u1", identity.ID)
}

func TestTransport_UnauthorizedClearsCredentialsBeforeCallerSeesError(t *testing.T) {
	paths := []string{"auth/me", "dashboard"}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token has expired"})
			})
			require.NoError(t, store.Save("durable", credentials.Durable))
			require.NoError(t, store.Save("ephemeral", credentials.Ephemeral))

			var fired []string
			client.OnUnauthorized(func() {
				_, stillStored := store.Read()
				assert.False(t, stillStored, "credentials must be cleared before callbacks run")
				fired = append(fired, "first")
			})
			client.OnUnauthorized(func() { fired = append(fired, "second") })

			var err error
			if path == "dashboard" {
				_, err = client.Dashboard(context.Background())
			} else {
				_, err = client.CurrentIdentity(context.Background())
			}

			require.Error(t, err)
			assert.Equal(t, []string{"first", "second"}, fired)
			assert.True(t, IsUnauthorized(err))
			assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
			assert.Equal(t, "Token has expired", err.Error())

			_, ok := store.Peek(credentials.Durable)
			assert.False(t, ok)
			_, ok = store.Peek(credentials.Ephemeral)
			assert.False(t, ok)
		})
	}
}

func TestOnUnauthorized_Unregister(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	calls := 0
	unregister := client.OnUnauthorized(func() { calls++ })
	unregister()

	_, err := client.CurrentIdentity(context.Background())
	require.Error(t, err)
	assert.Zero(t, calls)
}

func TestLogin_Success(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body loginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.com", body.Email)
		assert.Equal(t, "pw", body.Password)

		writeJSON(w, http.StatusOK, types.AuthResult{
			User:  types.Identity{ID: "u1", Email: "a@b.com", Role: types.RoleIndustry},
			Token: "tok",
		})
	})

	result, err := client.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", result.Token)
	assert.Equal(t, types.RoleIndustry, result.User.Role)
}

func TestLogin_ErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"backend message", http.StatusBadRequest, `{"message":"Invalid credentials"}`, "Invalid credentials"},
		{"error field", http.StatusBadRequest, `{"error":"missing credentials"}`, "missing credentials"},
		{"jwt msg field", http.StatusUnauthorized, `{"msg":"Token has expired"}`, "Token has expired"},
		{"message wins over msg", http.StatusBadRequest, `{"message":"Invalid credentials","msg":"other"}`, "Invalid credentials"},
		{"empty body", http.StatusInternalServerError, ``, "Login failed"},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, "Login failed"},
		{"blank message", http.StatusBadRequest, `{"message":"  "}`, "Login failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Login(context.Background(), "a@b.com", "pw")
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
			assert.Equal(t, tt.status, StatusCode(err))

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, OpLogin, apiErr.Op)
		})
	}
}

func TestLogin_MalformedResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]string{"id": "u1"}})
	})

	_, err := client.Login(context.Background(), "a@b.com", "pw")
	require.Error(t, err)
	assert.Equal(t, "Login failed", err.Error())
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestRegister_FallbackMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Register(context.Background(), types.RegisterData{Email: "a@b.com"})
	require.Error(t, err)
	assert.Equal(t, "Registration failed", err.Error())
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client, err := New(base, credentials.NewMemoryStore(), WithTimeout(time.Second))
	require.NoError(t, err)

	err = client.ForgotPassword(context.Background(), "a@b.com")
	require.Error(t, err)
	assert.Equal(t, "Failed to send reset email", err.Error())
	assert.Zero(t, StatusCode(err))
	assert.NotNil(t, errors.Unwrap(err))
}

func TestPasswordEndpoints(t *testing.T) {
	var (
		mu       sync.Mutex
		gotPaths []string
	)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPaths = append(gotPaths, r.URL.Path)
		mu.Unlock()
		if r.URL.Path == "/api/auth/reset-password" {
			var body resetPasswordRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "reset-tok", body.Token)
			assert.Equal(t, "newpass", body.Password)
			writeJSON(w, http.StatusBadRequest, map[string]string{})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "If the email exists, a reset link has been sent"})
	})

	require.NoError(t, client.ForgotPassword(context.Background(), "a@b.com"))

	err := client.ResetPassword(context.Background(), "reset-tok", "newpass")
	require.Error(t, err)
	assert.Equal(t, "Failed to reset password", err.Error())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/api/auth/forgot-password", "/api/auth/reset-password"}, gotPaths)
}

func TestDashboard(t *testing.T) {
	client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{
			"user_type": "artisan",
			"stats": {"total_requests": 4, "accepted_requests": 2, "available_materials": 9, "total_spent": 1250.5},
			"recent_requests": [{"id": "r1", "owner_name": "Acme", "total_amount": 300}]
		}`))
	})
	require.NoError(t, store.Save("tok", credentials.Durable))

	dashboard, err := client.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.RoleArtisan, dashboard.UserType)
	assert.Equal(t, 4, dashboard.Stats.TotalRequests)
	assert.Equal(t, 1250.5, dashboard.Stats.TotalSpent)
	require.Len(t, dashboard.RecentRequests, 1)
	assert.Equal(t, "Acme", dashboard.RecentRequests[0].OwnerName)
}
