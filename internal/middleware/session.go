package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// SessionConfig for the Redis-backed session. Authentication itself lives in
// the platform's identity service; this middleware only surfaces the
// already-established identity to handlers. Secret is the signing key that
// service used to sign the session cookie.
type SessionConfig struct {
	Secret   string
	RedisURL string
}

const (
	sessionCookieName = "farmgate.sid"
	sessionPrefix     = "session:"
	sessionMaxAge     = 24 * time.Hour
)

// SessionUser is the identity shape stored in the session under "user".
type SessionUser struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"` // "buyer" | "seller"
}

// Session returns a Fiber middleware that loads/saves session state from
// Redis under "session:<id>" and exposes the user in Locals.
func Session(cfg SessionConfig) (fiber.Handler, *redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	rdb := redis.NewClient(opt)

	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(sessionCookieName)
		// Signed cookies arrive as "s:id.signature"; a bad signature means no
		// session, not an error.
		if strings.HasPrefix(sessionID, "s:") {
			parts := strings.SplitN(sessionID[2:], ".", 2)
			sessionID = parts[0]
			if cfg.Secret != "" {
				if len(parts) != 2 || !validCookieSignature(parts[0], parts[1], cfg.Secret) {
					sessionID = ""
				}
			}
		}

		var data map[string]interface{}
		if sessionID != "" {
			b, err := rdb.Get(context.Background(), sessionPrefix+sessionID).Bytes()
			if err == nil {
				_ = json.Unmarshal(b, &data)
			}
		}
		if data == nil {
			data = make(map[string]interface{})
		}

		c.Locals("session_data", data)
		if u, ok := data["user"]; ok {
			c.Locals("user", u)
		} else {
			c.Locals("user", nil)
		}
		c.Locals("session_id", sessionID)

		if err := c.Next(); err != nil {
			return err
		}

		// Persist on the way out so handler mutations survive the request.
		if sid, _ := c.Locals("session_id").(string); sid != "" {
			updated, _ := c.Locals("session_data").(map[string]interface{})
			if updated != nil {
				b, _ := json.Marshal(updated)
				rdb.Set(context.Background(), sessionPrefix+sid, b, sessionMaxAge)
			}
		}
		return nil
	}, rdb, nil
}

// validCookieSignature checks an express-style cookie signature:
// base64(HMAC-SHA256(secret, id)) with padding stripped.
func validCookieSignature(id, sig, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(id))
	expected := strings.TrimRight(base64.StdEncoding.EncodeToString(mac.Sum(nil)), "=")
	return hmac.Equal([]byte(expected), []byte(strings.TrimRight(sig, "=")))
}
