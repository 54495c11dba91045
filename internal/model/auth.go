package model

import "github.com/golang-jwt/jwt/v5"

// OwnerClaims are JWT claims identifying the owner of audits
type OwnerClaims struct {
	OwnerID  string `json:"ownerId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token   string `json:"token"`
	OwnerID string `json:"ownerId"`
}
