package handler

import (
	"net/http"

	"travel-ledger/internal/models"
	"travel-ledger/internal/util"

	"github.com/gin-gonic/gin"
)

// GetMe returns the authenticated user's profile.
func GetMe(c *gin.Context) {
	v, ok := c.Get("currentUser")
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not logged in.")
		return
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not logged in.")
		return
	}
	util.Success(c, util.Response{
		"id":        user.ID,
		"username":  user.Username,
		"full_name": user.FullName,
	})
}
