package handlers

import (
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/karmanya-engineer/uber-clone/internal/models"
	"github.com/karmanya-engineer/uber-clone/pkg/utils"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone" binding:"required"`
	Role     string `json:"role" binding:"omitempty,oneof=user driver"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Register(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		email := strings.ToLower(input.Email)

		var existing models.User
		if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
			c.JSON(400, gin.H{"error": "User already exists"})
			return
		}

		role := input.Role
		if role == "" {
			role = string(models.UserRolePassenger)
		}

		verificationToken, err := utils.GenerateVerificationToken()
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to generate verification token"})
			return
		}
		expiry := utils.VerificationExpiry()

		user := models.User{
			Name:                     input.Name,
			Email:                    email,
			Password:                 input.Password,
			Phone:                    input.Phone,
			Role:                     role,
			EmailVerificationToken:   &verificationToken,
			EmailVerificationExpires: &expiry,
		}

		if err := user.HashPassword(); err != nil {
			c.JSON(500, gin.H{"error": "Failed to hash password"})
			return
		}

		if result := db.Create(&user); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to create user"})
			return
		}

		// Verification email is best-effort; registration succeeds regardless.
		go func() {
			if err := utils.SendVerificationEmail(user.Email, user.Name, verificationToken); err != nil {
				log.Printf("Failed to send verification email to %s: %v", user.Email, err)
			}
		}()

		token, err := utils.GenerateToken(&user)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to generate token"})
			return
		}

		c.JSON(201, gin.H{
			"token": token,
			"user": gin.H{
				"id":              user.ID,
				"name":            user.Name,
				"email":           user.Email,
				"role":            user.Role,
				"isEmailVerified": user.IsEmailVerified,
			},
			"message": "Registration successful! Please check your email to verify your account.",
		})
	}
}

func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if result := db.Where("email = ?", strings.ToLower(input.Email)).First(&user); result.Error != nil {
			c.JSON(400, gin.H{"error": "Invalid credentials"})
			return
		}

		if err := user.CheckPassword(input.Password); err != nil {
			c.JSON(400, gin.H{"error": "Invalid credentials"})
			return
		}

		token, err := utils.GenerateToken(&user)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to generate token"})
			return
		}

		c.JSON(200, gin.H{
			"token": token,
			"user": gin.H{
				"id":    user.ID,
				"name":  user.Name,
				"email": user.Email,
				"role":  user.Role,
			},
		})
	}
}

// VerifyEmail confirms an account from the emailed token and clears it.
func VerifyEmail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		var user models.User
		if result := db.Where("email_verification_token = ? AND email_verification_expires > ?",
			token, time.Now()).First(&user); result.Error != nil {
			c.JSON(400, gin.H{"error": "Invalid or expired verification token"})
			return
		}

		updates := map[string]interface{}{
			"is_email_verified":          true,
			"email_verification_token":   nil,
			"email_verification_expires": nil,
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to verify email"})
			return
		}

		c.JSON(200, gin.H{"message": "Email verified successfully!"})
	}
}

type ResendVerificationInput struct {
	Email string `json:"email" binding:"required,email"`
}

// ResendVerification issues a fresh verification token for an unverified account.
func ResendVerification(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ResendVerificationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if result := db.Where("email = ?", strings.ToLower(input.Email)).First(&user); result.Error != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		if user.IsEmailVerified {
			c.JSON(400, gin.H{"error": "Email already verified"})
			return
		}

		verificationToken, err := utils.GenerateVerificationToken()
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to generate verification token"})
			return
		}
		expiry := utils.VerificationExpiry()

		updates := map[string]interface{}{
			"email_verification_token":   verificationToken,
			"email_verification_expires": expiry,
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update verification token"})
			return
		}

		if err := utils.SendVerificationEmail(user.Email, user.Name, verificationToken); err != nil {
			c.JSON(500, gin.H{"error": "Failed to send verification email"})
			return
		}

		c.JSON(200, gin.H{"message": "Verification email sent successfully!"})
	}
}
