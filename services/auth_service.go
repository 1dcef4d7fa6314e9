package services

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yeremiapane/orderin/domain"
	"github.com/yeremiapane/orderin/models"
	"github.com/yeremiapane/orderin/utils"
	"golang.org/x/crypto/bcrypt"
)

// Credential is a plain username/PIN pair used to seed the operator list.
type Credential struct {
	Username string
	PIN      string
	Role     models.Role
}

type AuthService struct {
	mu    sync.RWMutex
	users map[string]models.User
}

// NewAuthService hashes every PIN up front; plain PINs are not kept.
func NewAuthService(creds ...Credential) (*AuthService, error) {
	s := &AuthService{users: make(map[string]models.User, len(creds))}
	for i, cred := range creds {
		username := strings.ToLower(strings.TrimSpace(cred.Username))
		if username == "" || cred.PIN == "" {
			return nil, fmt.Errorf("credential %d: username and pin are required", i)
		}
		if _, dup := s.users[username]; dup {
			return nil, fmt.Errorf("duplicate username %q", username)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(cred.PIN), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		s.users[username] = models.User{
			ID:       uint(i + 1),
			Username: username,
			Role:     cred.Role,
			PinHash:  string(hash),
		}
	}
	return s, nil
}

// Login checks username and PIN and returns a signed token for the user.
func (s *AuthService) Login(username, pin string) (string, models.User, error) {
	s.mu.RLock()
	user, ok := s.users[strings.ToLower(strings.TrimSpace(username))]
	s.mu.RUnlock()

	if !ok || bcrypt.CompareHashAndPassword([]byte(user.PinHash), []byte(pin)) != nil {
		utils.InfoLogger.WithField("username", username).Warn("Failed login attempt")
		return "", models.User{}, domain.ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return "", models.User{}, err
	}
	utils.InfoLogger.WithField("username", user.Username).Info("User logged in")
	return token, user, nil
}

// Logout blacklists token until it would have expired anyway.
func (s *AuthService) Logout(token string) error {
	claims, err := utils.ParseToken(token)
	if err != nil {
		return domain.ErrInvalidCredentials
	}
	expiry := time.Now().Add(utils.TokenTTL)
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}
	utils.BlacklistToken(token, expiry)
	return nil
}

func (s *AuthService) User(id uint) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}
