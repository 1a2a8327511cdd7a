package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserRole string

const (
	UserRolePassenger UserRole = "user"
	UserRoleDriver    UserRole = "driver"
)

type User struct {
	gorm.Model
	Name         string `json:"name" gorm:"column:name;not null"`
	Email        string `json:"email" gorm:"column:email;unique;not null"`
	Password     string `json:"-" gorm:"-:all"` // Temporary field for password handling
	PasswordHash string `json:"-" gorm:"column:password_hash"`
	Phone        string `json:"phone" gorm:"column:phone"`

	// Google-authenticated accounts carry a GoogleID and may have no password.
	GoogleID     *string `json:"-" gorm:"column:google_id;uniqueIndex"`
	IsGoogleUser bool    `json:"isGoogleUser" gorm:"column:is_google_user;not null;default:false"`

	IsEmailVerified          bool       `json:"isEmailVerified" gorm:"column:is_email_verified;not null;default:false"`
	EmailVerificationToken   *string    `json:"-" gorm:"column:email_verification_token"`
	EmailVerificationExpires *time.Time `json:"-" gorm:"column:email_verification_expires"`

	Role string `json:"role" gorm:"column:role;not null;default:'user'"`

	// Driver-only fields.
	CarMake      string   `json:"carMake,omitempty" gorm:"column:car_make"`
	CarModel     string   `json:"carModel,omitempty" gorm:"column:car_model"`
	CarYear      int      `json:"carYear,omitempty" gorm:"column:car_year"`
	LicensePlate string   `json:"licensePlate,omitempty" gorm:"column:license_plate"`
	CarColor     string   `json:"carColor,omitempty" gorm:"column:car_color"`
	Latitude     *float64 `json:"lat,omitempty" gorm:"column:latitude"`
	Longitude    *float64 `json:"lng,omitempty" gorm:"column:longitude"`
	IsAvailable  bool     `json:"isAvailable" gorm:"column:is_available;not null;default:false"`
	Rating       float64  `json:"rating" gorm:"column:rating;not null;default:0"`
	TotalRides   int      `json:"totalRides" gorm:"column:total_rides;not null;default:0"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// BeforeSave keeps emails case-insensitive at the storage layer.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = strings.ToLower(u.Email)
	return nil
}

func (u *User) HashPassword() error {
	if u.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	if u.PasswordHash == "" {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// HasLocation reports whether the user has a stored live location.
func (u *User) HasLocation() bool {
	return u.Latitude != nil && u.Longitude != nil
}
