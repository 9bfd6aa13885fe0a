package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/petloc/petloc/internal/users"
)

// RequireAdmin gates a route group on the stored account tipo. The role the
// client cached at login is only a UI hint; this re-reads the user record.
func RequireAdmin(usersSvc *users.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub := c.GetString("sub")
		if sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msgCredenciaisInvalidas})
			return
		}
		u, err := usersSvc.GetByID(c.Request.Context(), sub)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
			return
		}
		if u == nil || !u.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Acesso restrito a administradores"})
			return
		}
		c.Next()
	}
}
