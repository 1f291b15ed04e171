package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionSecret = "test-secret"

func signCookie(id, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(id))
	sig := strings.TrimRight(base64.StdEncoding.EncodeToString(mac.Sum(nil)), "=")
	return "s:" + id + "." + sig
}

func setupSessionApp(t *testing.T) (*fiber.App, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	handler, _, err := Session(SessionConfig{
		Secret:   testSessionSecret,
		RedisURL: "redis://" + mr.Addr(),
	})
	require.NoError(t, err)

	app := fiber.New()
	app.Use(handler)
	app.Get("/whoami", func(c *fiber.Ctx) error {
		id, err := SessionUserID(c)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendString(id.String())
	})
	return app, mr
}

func TestSession_ValidSignatureLoadsUser(t *testing.T) {
	app, mr := setupSessionApp(t)
	userID := uuid.New()
	require.NoError(t, mr.Set("session:sess-1", `{"user":{"user_id":"`+userID.String()+`","role":"seller"}}`))

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "farmgate.sid", Value: signCookie("sess-1", testSessionSecret)})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestSession_BadSignatureIsAnonymous(t *testing.T) {
	app, mr := setupSessionApp(t)
	require.NoError(t, mr.Set("session:sess-1", `{"user":{"user_id":"`+uuid.NewString()+`","role":"seller"}}`))

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "farmgate.sid", Value: signCookie("sess-1", "wrong-secret")})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestSession_UnsignedCookieIsAnonymous(t *testing.T) {
	app, mr := setupSessionApp(t)
	require.NoError(t, mr.Set("session:sess-1", `{"user":{"user_id":"`+uuid.NewString()+`","role":"seller"}}`))

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "farmgate.sid", Value: "s:sess-1"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestSession_NoCookie(t *testing.T) {
	app, _ := setupSessionApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/whoami", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}
