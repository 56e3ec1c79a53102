package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/brawlhub/elo-ladder/internal/domain"
)

// PlayerBuilder creates test players with a builder pattern
type PlayerBuilder struct {
	displayName string
	password    string
	isAdmin     bool
}

// NewPlayerBuilder creates a new PlayerBuilder with default values
func NewPlayerBuilder() *PlayerBuilder {
	return &PlayerBuilder{
		displayName: fmt.Sprintf("player_%s", uuid.New().String()[:8]),
		password:    "testpassword123",
	}
}

// WithDisplayName sets the display name
func (b *PlayerBuilder) WithDisplayName(name string) *PlayerBuilder {
	b.displayName = name
	return b
}

// WithPassword sets the password
func (b *PlayerBuilder) WithPassword(password string) *PlayerBuilder {
	b.password = password
	return b
}

// AsAdmin marks the player as an admin
func (b *PlayerBuilder) AsAdmin() *PlayerBuilder {
	b.isAdmin = true
	return b
}

// Build creates the player in the database and returns it with the raw password
func (b *PlayerBuilder) Build(t *testing.T, db *gorm.DB) (*domain.Player, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	player := &domain.Player{
		ID:           uuid.New(),
		DisplayName:  b.displayName,
		PasswordHash: string(hashedPassword),
		IsAdmin:      b.isAdmin,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(player).Error; err != nil {
		t.Fatalf("failed to create player: %v", err)
	}

	return player, b.password
}

// AuthResult matches the API auth response
type AuthResult struct {
	Player struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
		IsAdmin     bool   `json:"isAdmin"`
	} `json:"player"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RegisterViaAPI registers a player through the HTTP surface and
// returns the decoded auth payload.
func RegisterViaAPI(t *testing.T, ts *TestServer, displayName, password string) *AuthResult {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"displayName": displayName,
		"password":    password,
	})

	resp, err := http.Post(ts.APIURL("/auth/register"), "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("failed to register player: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected register status: %d", resp.StatusCode)
	}

	var result AuthResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode auth response: %v", err)
	}
	return &result
}

// AuthedRequest performs an HTTP request with a bearer token.
func AuthedRequest(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}
