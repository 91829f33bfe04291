// Package dto defines data transfer objects for the auth feature's HTTP transport layer.
package dto

import "time"

// LoginReq represents the request body for the /api/auth/login endpoint.
type LoginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRes carries the bearer token and the signed-in account.
type LoginRes struct {
	Token string  `json:"token"`
	User  UserRes `json:"user"`
}

// UserRes is the public form of an account; the password hash never leaves the server.
type UserRes struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
