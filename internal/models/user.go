package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user account can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents the application user account.
type User struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email             string             `bson:"email" json:"email"`
	PasswordHash      string             `bson:"password" json:"-"`
	FirstName         string             `bson:"fname" json:"fname"`
	LastName          string             `bson:"lname" json:"lname"`
	Mobile            string             `bson:"mobile,omitempty" json:"mobile,omitempty"`
	Role              string             `bson:"role" json:"role"`
	Status            bool               `bson:"status" json:"status"`
	EmailVerification bool               `bson:"email_verification" json:"email_verification"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	ModifiedAt        time.Time          `bson:"modified_at" json:"modified_at"`
}

// AuthSession pairs an access and refresh token issued at login. A request is
// authenticated when both cookies match a session whose access token has not
// expired.
type AuthSession struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	AccessToken        string             `bson:"accessToken" json:"-"`
	AccessTokenExpiry  time.Time          `bson:"accessTokenExpiry" json:"accessTokenExpiry"`
	RefreshToken       string             `bson:"refreshToken" json:"-"`
	RefreshTokenExpiry time.Time          `bson:"refreshTokenExpiry" json:"refreshTokenExpiry"`
	UserID             primitive.ObjectID `bson:"userId" json:"userId"`
	Description        string             `bson:"description" json:"description"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
}

// AddressLines holds the structured postal fields of an address.
type AddressLines struct {
	FirstLine  string `bson:"firstLine" json:"firstLine" binding:"required"`
	SecondLine string `bson:"secondLine,omitempty" json:"secondLine,omitempty"`
	Pincode    int    `bson:"pincode" json:"pincode" binding:"required"`
	City       string `bson:"city" json:"city" binding:"required"`
	State      string `bson:"state" json:"state" binding:"required"`
}

// Address is a shipping address owned by a user. At most one address per
// user has Default set.
type Address struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Address   AddressLines       `bson:"address" json:"address"`
	Default   bool               `bson:"default" json:"default"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
