package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/travelmate/tripplanner/client"
)

type ctxKey struct{}

// Claims is the token payload. Subject carries the user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (s *Server) issueToken(u client.UserRecord) (string, error) {
	now := s.now()
	claims := Claims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// IssueToken signs a token for an existing user. Tests use it to skip login.
func (s *Server) IssueToken(userID int64) (string, error) {
	s.mu.RLock()
	u, ok := s.users[userID]
	s.mu.RUnlock()
	if !ok {
		return "", errors.New("unknown user")
	}
	return s.issueToken(u.record)
}

func (s *Server) parseToken(raw string) (int64, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, errors.New("invalid subject")
	}
	return id, nil
}

// requireToken rejects requests without a valid, unexpired bearer token.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || raw == "" {
			writeUnauthorized(w, "Missing authorization header")
			return
		}
		userID, err := s.parseToken(raw)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				writeUnauthorized(w, "jwt expired")
				return
			}
			writeUnauthorized(w, "Invalid token")
			return
		}
		s.mu.RLock()
		_, known := s.users[userID]
		s.mu.RUnlock()
		if !known {
			writeUnauthorized(w, "Invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, userID)))
	})
}

func callerID(r *http.Request) int64 {
	id, _ := r.Context().Value(ctxKey{}).(int64)
	return id
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type authResponse struct {
	AccessToken string            `json:"accessToken"`
	User        client.UserRecord `json:"user"`
}

// AddUser registers a user directly. It returns the stored record.
func (s *Server) AddUser(email, password, username string) (client.UserRecord, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return client.UserRecord{}, err
	}
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[email]; exists {
		return client.UserRecord{}, errEmailExists
	}
	s.nextUserID++
	rec := client.UserRecord{ID: s.nextUserID, Email: email, Username: username}
	s.users[rec.ID] = &user{record: rec, hash: hash}
	s.byEmail[email] = rec.ID
	return rec, nil
}

var errEmailExists = errors.New("Email already exists")

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.Email == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if len(in.Password) < 4 {
		writeError(w, http.StatusBadRequest, "Password is too short")
		return
	}
	rec, err := s.AddUser(in.Email, in.Password, in.Username)
	if errors.Is(err, errEmailExists) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.log.Error().Stack().Err(err).Msg("register")
		writeError(w, http.StatusInternalServerError, "could not create user")
		return
	}
	s.respondWithToken(w, http.StatusCreated, rec)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.mu.RLock()
	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(in.Email))]
	var u *user
	if ok {
		u = s.users[id]
	}
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusBadRequest, "Cannot find user")
		return
	}
	if err := bcrypt.CompareHashAndPassword(u.hash, []byte(in.Password)); err != nil {
		writeError(w, http.StatusBadRequest, "Incorrect password")
		return
	}
	s.respondWithToken(w, http.StatusOK, u.record)
}

func (s *Server) respondWithToken(w http.ResponseWriter, status int, rec client.UserRecord) {
	tok, err := s.issueToken(rec)
	if err != nil {
		s.log.Error().Stack().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, status, authResponse{AccessToken: tok, User: rec})
}

// TokenTTL is the lifetime of issued tokens.
func (s *Server) TokenTTL() time.Duration { return s.ttl }
