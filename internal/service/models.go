package service

import (
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

type UserCredentialClaims struct {
	UserId   uuid.UUID `json:"user_id"`
	UserName string    `json:"user_name"`
	jwt.RegisteredClaims
}

// PageCount returns how many pages of pageSize are needed for total items
func PageCount(total int64, pageSize int32) int64 {
	if pageSize <= 0 {
		return 0
	}
	return (total + int64(pageSize) - 1) / int64(pageSize)
}
