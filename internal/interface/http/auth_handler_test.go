package handlers

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegister(t *testing.T) {
	t.Run("creates account and returns public shape", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.request(http.MethodPost, "/register", "",
			`{"username":"ada","email":"ada@example.com","password":"secret123"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, float64(1), body["id"])
		assert.Equal(t, "ada", body["username"])
		assert.Nil(t, body["profile_picture"])
		assert.NotContains(t, body, "email")

		u, err := env.users.GetByUsername(context.Background(), "ada")
		assert.NoError(t, err)
		assert.False(t, u.IsVerified)
		assert.NotEqual(t, "secret123", u.Password)
	})

	t.Run("rejects short password", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.request(http.MethodPost, "/register", "",
			`{"username":"ada","email":"ada@example.com","password":"nope"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		fields := fieldMessages(t, w)
		assert.Equal(t, "must be 6-128 characters long", fields["password"])
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.request(http.MethodPost, "/register", "",
			`{"username":"ada","email":"not-an-email","password":"secret123"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		fields := fieldMessages(t, w)
		assert.Equal(t, "must be a valid email", fields["email"])
	})

	t.Run("rejects username with forbidden characters", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.request(http.MethodPost, "/register", "",
			`{"username":"ada lovelace","email":"ada@example.com","password":"secret123"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		fields := fieldMessages(t, w)
		assert.Equal(t, "must be 3-30 characters of letters, digits, periods and underscores", fields["username"])
	})

	t.Run("rejects mismatched confirmation", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.request(http.MethodPost, "/register", "",
			`{"username":"ada","email":"ada@example.com","password":"secret123","confirm_password":"secret124"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		fields := fieldMessages(t, w)
		assert.Equal(t, "must match Password", fields["confirm_password"])
	})

	t.Run("reports duplicate username case-insensitively", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, "ada", "ada@example.com")

		w := env.request(http.MethodPost, "/register", "",
			`{"username":"Ada","email":"other@example.com","password":"secret123"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		fields := fieldMessages(t, w)
		assert.Equal(t, "Username already taken", fields["username"])
	})

	t.Run("reports duplicate email", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, "ada", "ada@example.com")

		w := env.request(http.MethodPost, "/register", "",
			`{"username":"ada2","email":"ADA@example.com","password":"secret123"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		fields := fieldMessages(t, w)
		assert.Equal(t, "Email already registered", fields["email"])
	})

	t.Run("maps broken json to a body error", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.request(http.MethodPost, "/register", "", `{"username":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		fields := fieldMessages(t, w)
		assert.Equal(t, "invalid json", fields["body"])
	})
}

func TestVerify(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "ada", "ada@example.com")
	u.IsVerified = false

	token, err := env.jwt.GenerateVerifyToken(strconv.FormatInt(u.ID, 10))
	assert.NoError(t, err)

	t.Run("first use verifies", func(t *testing.T) {
		w := env.request(http.MethodGet, "/verify?token="+token, "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "success", decode(t, w)["status"])
		assert.True(t, env.users.rows[u.ID].IsVerified)
	})

	t.Run("second use reports already verified", func(t *testing.T) {
		w := env.request(http.MethodGet, "/verify?token="+token, "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "already_verified", decode(t, w)["status"])
	})

	t.Run("garbage token is invalid, still 200", func(t *testing.T) {
		w := env.request(http.MethodGet, "/verify?token=garbage", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "invalid", decode(t, w)["status"])
	})

	t.Run("access token is not a verify token", func(t *testing.T) {
		access := env.token(t, u)
		w := env.request(http.MethodGet, "/verify?token="+access, "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "invalid", decode(t, w)["status"])
	})

	t.Run("token for a deleted account reports error", func(t *testing.T) {
		gone, err := env.jwt.GenerateVerifyToken("999")
		assert.NoError(t, err)
		w := env.request(http.MethodGet, "/verify?token="+gone, "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "error", decode(t, w)["status"])
	})
}

func TestLogin(t *testing.T) {
	t.Run("issues a bearer token pair", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, "ada", "ada@example.com")

		w := env.login("ada", "password123")

		assert.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "bearer", body["token_type"])
		assert.NotEmpty(t, body["access_token"])
		assert.NotEmpty(t, body["refresh_token"])
		assert.NotEqual(t, body["access_token"], body["refresh_token"])
	})

	t.Run("wrong password", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, "ada", "ada@example.com")

		w := env.login("ada", "wrong")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid username or password", decode(t, w)["detail"])
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	})

	t.Run("unknown username gets the same error", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.login("nobody", "password123")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid username or password", decode(t, w)["detail"])
	})

	t.Run("unverified account is refused", func(t *testing.T) {
		env := newTestEnv(t)
		u := env.seedUser(t, "ada", "ada@example.com")
		u.IsVerified = false

		w := env.login("ada", "password123")

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Email not verified", decode(t, w)["detail"])
	})

	t.Run("missing credentials fail validation", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.login("", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		fields := fieldMessages(t, w)
		assert.Equal(t, "is required", fields["username"])
		assert.Equal(t, "is required", fields["password"])
	})
}

func TestRefresh(t *testing.T) {
	t.Run("mints a fresh access token", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedUser(t, "ada", "ada@example.com")
		pair := decode(t, env.login("ada", "password123"))

		w := env.request(http.MethodPost, "/refresh", "",
			strconv.Quote(pair["refresh_token"].(string)))

		assert.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "bearer", body["token_type"])
		assert.NotEmpty(t, body["access_token"])
		assert.NotContains(t, body, "refresh_token")

		// The minted token must actually authenticate.
		me := env.request(http.MethodGet, "/me", body["access_token"].(string), "")
		assert.Equal(t, http.StatusOK, me.Code)
	})

	t.Run("access token is rejected as refresh", func(t *testing.T) {
		env := newTestEnv(t)
		u := env.seedUser(t, "ada", "ada@example.com")

		w := env.request(http.MethodPost, "/refresh", "", strconv.Quote(env.token(t, u)))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Could not validate credentials", decode(t, w)["detail"])
	})

	t.Run("deleted account cannot refresh", func(t *testing.T) {
		env := newTestEnv(t)
		u := env.seedUser(t, "ada", "ada@example.com")
		pair := decode(t, env.login("ada", "password123"))
		assert.NoError(t, env.users.Delete(context.Background(), u.ID))

		w := env.request(http.MethodPost, "/refresh", "",
			strconv.Quote(pair["refresh_token"].(string)))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("body must be a json string", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.request(http.MethodPost, "/refresh", "", `{"refresh_token":"x"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		fields := fieldMessages(t, w)
		assert.NotEmpty(t, fields["body"])
	})
}
