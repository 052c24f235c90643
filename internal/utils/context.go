package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/grupoaf/afix/internal/middleware"
	"github.com/grupoaf/afix/internal/types"
)

func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return middleware.AuthenticatedUser{}, fmt.Errorf("user not authenticated")
	}

	authenticatedUser, ok := user.(middleware.AuthenticatedUser)

	if !ok {
		return middleware.AuthenticatedUser{}, fmt.Errorf("invalid user type in context")
	}

	return authenticatedUser, nil
}

// GetOptionalUser is GetCurrentUser for routes behind OptionalAuthMiddleware.
func GetOptionalUser(ctx *gin.Context) (middleware.AuthenticatedUser, bool) {
	user, err := GetCurrentUser(ctx)
	return user, err == nil
}
