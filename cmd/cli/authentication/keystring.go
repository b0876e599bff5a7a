package authentication

// Keeps the blogctl session in the operating system keyring, one entry per API server.
import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zalando/go-keyring"
)

const serviceName = "bloghub-cli"

// ErrSessionExpired is returned for a stored token past its expiry.
var ErrSessionExpired = errors.New("session expired, run blogctl login again")

// Session is what login leaves behind for later commands.
type Session struct {
	AccessToken string    `json:"access_token"`
	Email       string    `json:"email"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// NewSession stamps the expiry from the server's expires_in seconds.
func NewSession(token, email string, expiresIn int64, now time.Time) *Session {
	return &Session{
		AccessToken: token,
		Email:       email,
		ExpiresAt:   now.Add(time.Duration(expiresIn) * time.Second),
	}
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Save stores the session under the API server it was issued by.
func Save(apiURL string, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return keyring.Set(serviceName, apiURL, string(data))
}

// Load returns the live session for apiURL.
func Load(apiURL string, now time.Time) (*Session, error) {
	value, err := keyring.Get(serviceName, apiURL)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, fmt.Errorf("not logged in to %s: %w", apiURL, err)
		}
		return nil, err
	}

	var s Session
	if err := json.Unmarshal([]byte(value), &s); err != nil {
		return nil, fmt.Errorf("corrupt stored session: %w", err)
	}
	if s.Expired(now) {
		return nil, ErrSessionExpired
	}
	return &s, nil
}

// Forget removes the session for apiURL; a missing one is not an error.
func Forget(apiURL string) error {
	err := keyring.Delete(serviceName, apiURL)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
