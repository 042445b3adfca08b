package testutil

import (
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/zaidzaid0342-dotcom/restaurant/config"
	"github.com/zaidzaid0342-dotcom/restaurant/models"
	"github.com/zaidzaid0342-dotcom/restaurant/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestJWTConfig returns a config carrying the JWT settings the test
// suites sign and validate tokens with
func TestJWTConfig() *config.Config {
	return &config.Config{
		Port:        "8080",
		GoEnv:       "test",
		JWTSecret:   "test-secret-that-is-long-enough",
		JWTIssuer:   "restaurant-api",
		JWTAudience: "restaurant-clients",
		FrontendURL: "http://localhost:3000",
	}
}

// CreateUser inserts a user with a bcrypt-hashed password
func CreateUser(t *testing.T, db *gorm.DB, email, password, role string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := models.User{
		Name:     email,
		Email:    email,
		Password: string(hash),
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	return &user
}

// IssueToken signs a real token for the user with the given config
func IssueToken(t *testing.T, cfg *config.Config, user *models.User) string {
	t.Helper()

	token, err := services.NewTokenService(cfg).IssueToken(user.ID)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	return token
}

// SetMockAuthContext sets up a mock authenticated context for handler tests
func SetMockAuthContext(c *gin.Context, userID uint) {
	c.Set("user_id", strconv.FormatUint(uint64(userID), 10))
}
