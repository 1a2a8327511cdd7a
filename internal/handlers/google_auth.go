package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/karmanya-engineer/uber-clone/internal/models"
	"github.com/karmanya-engineer/uber-clone/pkg/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

const oauthStateCookie = "oauth_state"

func googleOAuthConfig() *oauth2.Config {
	callbackURL := os.Getenv("GOOGLE_CALLBACK_URL")
	if callbackURL == "" {
		base := os.Getenv("BACKEND_URL")
		if base == "" {
			base = "http://localhost:8080"
		}
		callbackURL = base + "/api/auth/google/callback"
	}

	return &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  callbackURL,
		Scopes:       []string{"profile", "email"},
		Endpoint:     google.Endpoint,
	}
}

func frontendBaseURL() string {
	if url := os.Getenv("FRONTEND_URL"); url != "" {
		return url
	}
	return "http://localhost:3000"
}

// GoogleLogin starts the OAuth code flow with a per-request state cookie.
func GoogleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		buf := make([]byte, 16)
		if _, err := rand.Read(buf); err != nil {
			c.JSON(500, gin.H{"error": "Failed to start Google sign-in"})
			return
		}
		state := hex.EncodeToString(buf)

		c.SetCookie(oauthStateCookie, state, 300, "/", "", false, true)
		c.Redirect(302, googleOAuthConfig().AuthCodeURL(state))
	}
}

type googleProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GoogleCallback completes the code flow: exchanges the code, resolves or
// creates the account (linking by Google id first, then by email), and
// redirects back to the frontend with a JWT.
func GoogleCallback(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		frontend := frontendBaseURL()

		stateCookie, err := c.Cookie(oauthStateCookie)
		if err != nil || stateCookie == "" || c.Query("state") != stateCookie {
			c.Redirect(302, frontend+"/login?error=auth_failed")
			return
		}

		code := c.Query("code")
		if code == "" {
			c.Redirect(302, frontend+"/login?error=auth_failed")
			return
		}

		conf := googleOAuthConfig()
		token, err := conf.Exchange(c.Request.Context(), code)
		if err != nil {
			c.Redirect(302, frontend+"/login?error=auth_failed")
			return
		}

		client := conf.Client(c.Request.Context(), token)
		resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
		if err != nil {
			c.Redirect(302, frontend+"/login?error=server_error")
			return
		}
		defer resp.Body.Close()

		var profile googleProfile
		if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil || profile.ID == "" || profile.Email == "" {
			c.Redirect(302, frontend+"/login?error=server_error")
			return
		}

		user, err := resolveGoogleUser(db, profile)
		if err != nil {
			c.Redirect(302, frontend+"/login?error=server_error")
			return
		}

		jwtToken, err := utils.GenerateToken(user)
		if err != nil {
			c.Redirect(302, frontend+"/login?error=server_error")
			return
		}

		redirect := fmt.Sprintf("%s/auth/callback?token=%s&role=%s&name=%s",
			frontend,
			url.QueryEscape(jwtToken),
			url.QueryEscape(user.Role),
			url.QueryEscape(user.Name),
		)
		c.Redirect(302, redirect)
	}
}

func resolveGoogleUser(db *gorm.DB, profile googleProfile) (*models.User, error) {
	var user models.User

	// Existing Google-linked account.
	if err := db.Where("google_id = ?", profile.ID).First(&user).Error; err == nil {
		return &user, nil
	}

	// Existing password account with the same email: link the Google identity.
	// Google emails are already verified.
	if err := db.Where("email = ?", profile.Email).First(&user).Error; err == nil {
		updates := map[string]interface{}{
			"google_id":         profile.ID,
			"is_google_user":    true,
			"is_email_verified": true,
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}

	googleID := profile.ID
	user = models.User{
		Name:            profile.Name,
		Email:           profile.Email,
		GoogleID:        &googleID,
		IsGoogleUser:    true,
		IsEmailVerified: true,
		Role:            string(models.UserRolePassenger),
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
