package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

type contextKey string

const adminKey contextKey = "admin"

const (
	cookieName = "session_token"
	sessionTTL = 24 * time.Hour
)

var ErrInvalidCredentials = errors.New("invalid login or password")

// Admin guards the back-office endpoints with a single bcrypt-checked
// account and a signed session cookie.
type Admin struct {
	JWTKey       []byte
	Login        string
	PasswordHash string
	SecureCookie bool
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Enabled is false until a signing key and credentials are configured.
func (a *Admin) Enabled() bool {
	return a != nil && len(a.JWTKey) > 0 && a.Login != "" && a.PasswordHash != ""
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func (a *Admin) Check(login, password string) error {
	if subtle.ConstantTimeCompare([]byte(login), []byte(a.Login)) != 1 {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (a *Admin) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if !a.Enabled() {
		http.NotFound(w, r)
		return
	}
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" || req.Password == "" {
		http.Error(w, "Login and password required", http.StatusBadRequest)
		return
	}
	if err := a.Check(req.Login, req.Password); err != nil {
		slog.Warn("admin login failed", "login", req.Login, "remote", r.RemoteAddr)
		http.Error(w, "Invalid login or password", http.StatusUnauthorized)
		return
	}
	if err := a.addCookie(w, req.Login); err != nil {
		slog.Error("sign session token", "error", err)
		http.Error(w, "Token error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Authentication successful"))
}

func (a *Admin) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			http.NotFound(w, r)
			return
		}
		cookie, err := r.Cookie(cookieName)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		login, ok := a.parseToken(cookie.Value)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), adminKey, login)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminFromContext returns the login placed by Middleware.
func AdminFromContext(ctx context.Context) (string, bool) {
	login, ok := ctx.Value(adminKey).(string)
	return login, ok && login != ""
}

func (a *Admin) IssueToken(login string, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"login": login,
		"iat":   now.Unix(),
		"exp":   now.Add(sessionTTL).Unix(),
	})
	return token.SignedString(a.JWTKey)
}

func (a *Admin) parseToken(tokenString string) (string, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.JWTKey, nil
	})
	if err != nil || !token.Valid {
		return "", false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	login, ok := claims["login"].(string)
	if !ok || login != a.Login {
		return "", false
	}
	return login, true
}

func (a *Admin) addCookie(w http.ResponseWriter, login string) error {
	now := time.Now()
	tokenString, err := a.IssueToken(login, now)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    tokenString,
		Expires:  now.Add(sessionTTL),
		Path:     "/",
		HttpOnly: true,
		Secure:   a.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

type IPRateLimiter struct {
	ips map[string]*rate.Limiter
	mu  sync.Mutex
	r   rate.Limit
	b   int
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: make(map[string]*rate.Limiter),
		r:   r,
		b:   b,
	}
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter, exists := i.ips[ip]
	if !exists {
		limiter = rate.NewLimiter(i.r, i.b)
		i.ips[ip] = limiter
	}
	return limiter
}

// LimitMiddleware applies one token bucket per client IP.
func (i *IPRateLimiter) LimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !i.getLimiter(ip).Allow() {
			http.Error(w, "Too Many Requests. Try again later.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
