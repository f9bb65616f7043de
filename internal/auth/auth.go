// Package auth covers the single-admin credential lifecycle and the session
// tokens that protect the API. Tokens are compact HS256 JWTs carried in an
// httponly cookie.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/agenthands/boron/internal/store"
)

// CookieName is where the session token travels.
const CookieName = "access_token"

const minPasswordLen = 8

var (
	ErrAlreadyInitialized = errors.New("credentials already initialized")
	ErrNotInitialized     = errors.New("credentials not initialized")
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters", minPasswordLen)
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Credentials is the persisted admin record. Initialized distinguishes a
// fresh install from a configured one.
type Credentials struct {
	Initialized  bool   `json:"initialized"`
	PasswordHash string `json:"password_hash"`
}

// Claims are the JWT payload fields the service cares about.
type Claims struct {
	Sub string `json:"sub"`
	Iat int64  `json:"iat"`
	Exp int64  `json:"exp"`
}

type jwtHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

type Service struct {
	Store    store.Store
	Username string
	Expiry   time.Duration

	secret []byte
}

// NewService builds the auth service. With an empty secret a random one is
// generated and persisted so sessions survive restarts.
func NewService(ctx context.Context, s store.Store, username, secret string, expiry time.Duration) (*Service, error) {
	svc := &Service{
		Store:    s,
		Username: username,
		Expiry:   expiry,
	}

	if secret != "" {
		svc.secret = []byte(secret)
		return svc, nil
	}

	stored, err := s.Get(ctx, store.SessionSecretKey)
	if err == nil {
		svc.secret = stored
		return svc, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	generated := make([]byte, 32)
	if _, err := rand.Read(generated); err != nil {
		return nil, fmt.Errorf("failed to generate session secret: %w", err)
	}
	if err := s.Set(ctx, store.SessionSecretKey, generated); err != nil {
		return nil, err
	}
	svc.secret = generated
	return svc, nil
}

func (s *Service) loadCredentials(ctx context.Context) (*Credentials, error) {
	data, err := s.Store.Get(ctx, store.CredentialsKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &Credentials{}, nil
		}
		return nil, err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to decode credentials: %w", err)
	}
	return &creds, nil
}

// Initialized reports whether the admin password has been set.
func (s *Service) Initialized(ctx context.Context) (bool, error) {
	creds, err := s.loadCredentials(ctx)
	if err != nil {
		return false, err
	}
	return creds.Initialized, nil
}

// Setup stores the initial admin password. It refuses to run twice; the
// password can only be replaced by wiping the store.
func (s *Service) Setup(ctx context.Context, password string) error {
	if len(password) < minPasswordLen {
		return ErrPasswordTooShort
	}

	creds, err := s.loadCredentials(ctx)
	if err != nil {
		return err
	}
	if creds.Initialized {
		return ErrAlreadyInitialized
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	data, err := json.Marshal(Credentials{Initialized: true, PasswordHash: string(hash)})
	if err != nil {
		return err
	}
	return s.Store.Set(ctx, store.CredentialsKey, data)
}

// Login verifies the credentials and returns a signed session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	creds, err := s.loadCredentials(ctx)
	if err != nil {
		return "", err
	}
	if !creds.Initialized {
		return "", ErrNotInitialized
	}
	if username != s.Username {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.SignToken(username)
}

// SignToken issues an HS256 JWT for the given subject.
func (s *Service) SignToken(subject string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Sub: subject,
		Iat: now.Unix(),
		Exp: now.Add(s.Expiry).Unix(),
	}

	headerJSON, err := json.Marshal(jwtHeader{Alg: "HS256", Typ: "JWT"})
	if err != nil {
		return "", err
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	headerB64 := base64.RawURLEncoding.EncodeToString(headerJSON)
	claimsB64 := base64.RawURLEncoding.EncodeToString(claimsJSON)
	signingInput := headerB64 + "." + claimsB64

	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(signingInput))
	signature := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	return signingInput + "." + signature, nil
}

// VerifyToken checks the signature and expiry and returns the claims.
func (s *Service) VerifyToken(token string) (*Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return nil, ErrInvalidToken
	}

	signingInput := parts[0] + "." + parts[1]
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(signingInput))
	expected := mac.Sum(nil)

	got, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil || !hmac.Equal(expected, got) {
		return nil, ErrInvalidToken
	}

	claimsJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidToken
	}

	var claims Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return nil, ErrInvalidToken
	}
	if time.Now().UTC().Unix() >= claims.Exp {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
