package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biglotteryfund/funding/core/user"
)

func parseToken(t *testing.T, env *testEnv, token string) *Claims {
	t.Helper()
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(env.conf.SecretKey), nil
	})
	require.NoError(t, err)
	return claims
}

func TestLogin(t *testing.T) {
	env := setup(t)

	tests := []struct {
		name     string
		data     LoginRequest
		wantCode int
	}{
		{name: "by username", data: LoginRequest{Username: "applicant", Password: testPassword}, wantCode: http.StatusOK},
		{name: "by email", data: LoginRequest{Username: " JANE@test.test ", Password: testPassword}, wantCode: http.StatusOK},
		{name: "wrong password", data: LoginRequest{Username: "applicant", Password: "nope"}, wantCode: http.StatusBadRequest},
		{name: "unknown user", data: LoginRequest{Username: "nobody", Password: testPassword}, wantCode: http.StatusBadRequest},
		{name: "missing password", data: LoginRequest{Username: "applicant"}, wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.serve(newRequest(http.MethodPost, "/api/v1/users/login", marshalObj(t, tt.data)))
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode != http.StatusOK {
				return
			}

			var resp LoginResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			claims := parseToken(t, env, resp.Token)
			assert.Equal(t, env.applicant.ID, claims.Subject)
			assert.True(t, claims.IsApplicant)
			assert.False(t, claims.IsStaff)

			cookies := rec.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, tokenCookieName, cookies[0].Name)
			assert.Equal(t, resp.Token, cookies[0].Value)
			assert.True(t, cookies[0].HttpOnly)
		})
	}

	t.Run("deactivated account", func(t *testing.T) {
		inactive := false
		uu := user.UpdateUser{IsActive: &inactive}
		require.NoError(t, env.users.ValidateUpdate(context.Background(), env.staff, &uu))
		_, err := env.users.Update(context.Background(), env.staff, uu)
		require.NoError(t, err)

		rec := env.serve(newRequest(http.MethodPost, "/api/v1/users/login",
			marshalObj(t, LoginRequest{Username: "staffer", Password: testPassword})))
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: "account deactivated"})}, rec)
	})
}

func TestSignup(t *testing.T) {
	env := setup(t)

	t.Run("creates an applicant", func(t *testing.T) {
		rec := env.serve(newRequest(http.MethodPost, "/api/v1/users/signup", marshalObj(t, user.NewUser{
			Name:            "Sam Smith",
			Email:           "sam@test.test",
			Password:        testPassword,
			PasswordConfirm: testPassword,
			Roles:           []string{user.RoleStaffAdmin}, // ignored
		})))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		claims := parseToken(t, env, resp.Token)
		assert.True(t, claims.IsApplicant)
		assert.False(t, claims.IsStaff)
		assert.Equal(t, []string{user.RoleApplicant}, claims.Roles)
	})

	t.Run("email taken", func(t *testing.T) {
		rec := env.serve(newRequest(http.MethodPost, "/api/v1/users/signup", marshalObj(t, user.NewUser{
			Name:            "Jane Again",
			Email:           "jane@test.test",
			Password:        testPassword,
			PasswordConfirm: testPassword,
		})))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"email": "a user with this email already exists"}`, rec.Body.String())
	})

	t.Run("weak password", func(t *testing.T) {
		rec := env.serve(newRequest(http.MethodPost, "/api/v1/users/signup", marshalObj(t, user.NewUser{
			Name:            "Kim Lee",
			Email:           "kim@test.test",
			Password:        "password",
			PasswordConfirm: "password",
		})))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"password"`)
	})
}

func TestUserAPIAuthorization(t *testing.T) {
	env := setup(t)
	applicantToken := env.token(t, env.applicant)
	staffToken := env.token(t, env.staff)
	adminToken := env.token(t, env.admin)

	tests := []httpTest{
		{
			name:     "missing token",
			method:   http.MethodGet,
			path:     "/api/v1/users",
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, errMissingToken),
		},
		{
			name:     "applicant cannot list users",
			method:   http.MethodGet,
			path:     "/api/v1/users",
			token:    applicantToken,
			wantCode: http.StatusForbidden,
			wantData: marshalObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "staff cannot list users",
			method:   http.MethodGet,
			path:     "/api/v1/users",
			token:    staffToken,
			wantCode: http.StatusForbidden,
		},
		{
			name:     "admin lists roles",
			method:   http.MethodGet,
			path:     "/api/v1/users/roles",
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: marshalObj(t, user.Roles),
		},
		{
			name:     "user retrieves themselves",
			method:   http.MethodGet,
			path:     "/api/v1/users/" + env.applicant.ID,
			token:    applicantToken,
			wantCode: http.StatusOK,
		},
		{
			name:     "user cannot see others",
			method:   http.MethodGet,
			path:     "/api/v1/users/" + env.staff.ID,
			token:    applicantToken,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "admin sees anyone",
			method:   http.MethodGet,
			path:     "/api/v1/users/" + env.applicant.ID,
			token:    adminToken,
			wantCode: http.StatusOK,
		},
		{
			name:     "admin cannot delete themselves",
			method:   http.MethodDelete,
			path:     "/api/v1/users/" + env.admin.ID,
			token:    adminToken,
			wantCode: http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.serve(newAuthRequest(tt.method, tt.path, tt.token, tt.body))
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestQueryUsers(t *testing.T) {
	env := setup(t)
	adminToken := env.token(t, env.admin)

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{name: "all", query: "", wantIDs: []string{env.applicant.ID, env.staff.ID, env.admin.ID}},
		{name: "search", query: "?search=jane", wantIDs: []string{env.applicant.ID}},
		{name: "by role", query: "?role=" + user.RoleStaff, wantIDs: []string{env.staff.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.serve(newAuthRequest(http.MethodGet, "/api/v1/users"+tt.query, adminToken))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var users []user.User
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
			ids := make([]string, len(users))
			for i, usr := range users {
				ids[i] = usr.ID
			}
			assert.ElementsMatch(t, tt.wantIDs, ids)
		})
	}
}

func TestUpdateUser(t *testing.T) {
	env := setup(t)
	applicantToken := env.token(t, env.applicant)
	adminToken := env.token(t, env.admin)

	t.Run("user renames themselves", func(t *testing.T) {
		rec := env.serve(newAuthRequest(http.MethodPut, "/api/v1/users/"+env.applicant.ID, applicantToken,
			marshalObj(t, user.UpdateUser{Name: "Jane Smith"})))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var usr user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
		assert.Equal(t, "Jane Smith", usr.Name)
	})

	t.Run("user cannot change their roles", func(t *testing.T) {
		rec := env.serve(newAuthRequest(http.MethodPut, "/api/v1/users/"+env.applicant.ID, applicantToken,
			marshalObj(t, user.UpdateUser{Roles: []string{user.RoleStaffAdmin}})))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin deactivates a user", func(t *testing.T) {
		inactive := false
		rec := env.serve(newAuthRequest(http.MethodPut, "/api/v1/users/"+env.staff.ID, adminToken,
			marshalObj(t, user.UpdateUser{IsActive: &inactive})))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var usr user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
		assert.False(t, usr.IsActive)
	})
}

func TestTokenRefresh(t *testing.T) {
	env := setup(t)

	rec := env.serve(newAuthRequest(http.MethodPost, "/api/v1/users/token-refresh", env.token(t, env.applicant)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, env.applicant.ID, parseToken(t, env, resp.Token).Subject)
}

func TestPasswordReset(t *testing.T) {
	env := setup(t)
	success := SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	}

	tests := []struct {
		name     string
		email    string
		wantCode int
		wantSent int
	}{
		{name: "known email", email: "jane@test.test", wantCode: http.StatusOK, wantSent: 1},
		{name: "unknown email", email: "who@test.test", wantCode: http.StatusOK, wantSent: 0},
		{name: "invalid email", email: "nope", wantCode: http.StatusBadRequest, wantSent: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.mail.Reset()
			rec := env.serve(newRequest(http.MethodPost, "/api/v1/users/password-reset",
				marshalObj(t, PasswordResetRequest{Email: tt.email})))
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusOK {
				checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marshalObj(t, success)}, rec)
			}
			assert.Len(t, env.mail.SentMessages(), tt.wantSent)
		})
	}

	t.Run("confirm with bad token", func(t *testing.T) {
		rec := env.serve(newRequest(http.MethodPost, "/api/v1/users/password-reset-confirm", marshalObj(t, user.ResetUserPassword{
			Token:           "bad-token",
			UID:             user.EncodeUID(env.applicant),
			Password:        "N3w!Passw0rd",
			PasswordConfirm: "N3w!Passw0rd",
		})))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"token": "Invalid or expired token"}`, rec.Body.String())
	})
}
