package api

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/heliumhq/invite-dashboard-api/config"
	"github.com/heliumhq/invite-dashboard-api/identity"
)

// TokenCacheTTL bounds how long a verified bearer token is trusted without
// being checked again
const TokenCacheTTL = time.Minute

const adminUserName = "admin"

// expiresExtension carries a user token's exp, in unix seconds, on the cached info
const expiresExtension = "exp"

var (
	errInvalidSecret = errors.New("invalid admin secret")
	errTokenExpired  = errors.New("access token has expired")
)

// Guard protects routes with either the shared admin secret or a user access token
type Guard struct {
	admin auth.Authenticator
	user  auth.Authenticator
	// Now is the clock cached tokens are checked against; nil uses time.Now
	Now func() time.Time
}

// NewGuard sets up the go-guardian authenticators. adminSecret may be the
// plain secret or its bcrypt hash.
func NewGuard(ctx context.Context, adminSecret string, verifier *identity.TokenVerifier) *Guard {
	g := &Guard{admin: auth.New(), user: auth.New()}

	adminStrategy := bearer.New(adminSecretCheck(adminSecret), store.NewFIFO(ctx, TokenCacheTTL))
	g.admin.EnableStrategy(bearer.CachedStrategyKey, adminStrategy)

	userStrategy := bearer.New(accessTokenCheck(verifier), store.NewFIFO(ctx, TokenCacheTTL))
	g.user.EnableStrategy(bearer.CachedStrategyKey, userStrategy)
	return g
}

// Admin only lets requests through that carry the admin secret as bearer token
func (g *Guard) Admin(next http.Handler) http.Handler {
	return g.protect(g.admin, "Invalid password", next)
}

// User only lets requests through that carry a valid user access token
func (g *Guard) User(next http.Handler) http.Handler {
	return g.protect(g.user, "Invalid authentication credentials", next)
}

func (g *Guard) protect(a auth.Authenticator, rejected string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if bearerToken(r) == "" {
			config.ErrorStatus("Authentication required", http.StatusUnauthorized, w, errors.New("missing bearer token"))
			return
		}
		user, err := a.Authenticate(r)
		if err == nil && g.expired(user) {
			err = errTokenExpired
		}
		if err != nil {
			zap.S().Warnw("unauthorized",
				"url", r.URL)
			config.ErrorStatus(rejected, http.StatusUnauthorized, w, err)
			return
		}
		zap.S().Debugw("authenticated", "user", user.UserName(), "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// expired reports whether a token cached before its exp is now past it
func (g *Guard) expired(info auth.Info) bool {
	values := info.Extensions()[expiresExtension]
	if len(values) == 0 {
		return false
	}
	exp, err := strconv.ParseInt(values[0], 10, 64)
	if err != nil {
		return true
	}
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return !now().Before(time.Unix(exp, 0))
}

func bearerToken(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func adminSecretCheck(secret string) bearer.AuthenticateFunc {
	hashed := isBcryptHash(secret)
	expected := sha256.Sum256([]byte(secret))
	return func(ctx context.Context, r *http.Request, token string) (auth.Info, error) {
		if hashed {
			if err := bcrypt.CompareHashAndPassword([]byte(secret), []byte(token)); err != nil {
				return nil, errInvalidSecret
			}
			return auth.NewDefaultUser(adminUserName, adminUserName, nil, nil), nil
		}
		got := sha256.Sum256([]byte(token))
		if subtle.ConstantTimeCompare(got[:], expected[:]) != 1 {
			return nil, errInvalidSecret
		}
		return auth.NewDefaultUser(adminUserName, adminUserName, nil, nil), nil
	}
}

func isBcryptHash(s string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

func accessTokenCheck(verifier *identity.TokenVerifier) bearer.AuthenticateFunc {
	return func(ctx context.Context, r *http.Request, token string) (auth.Info, error) {
		claims, err := verifier.Verify(token)
		if err != nil {
			return nil, err
		}
		return auth.NewDefaultUser(claims.Email, claims.Subject, nil, map[string][]string{
			"role":           {claims.Role},
			expiresExtension: {strconv.FormatInt(claims.ExpiresAt.Unix(), 10)},
		}), nil
	}
}
