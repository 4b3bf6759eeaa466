package handler

import (
	"net/http"
	"time"

	"travel-ledger/internal/actor"
	"travel-ledger/internal/audit"
	"travel-ledger/internal/models"
	"travel-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler serves register/login/logout.
type AuthHandler struct {
	DB          *gorm.DB
	JWTSecret   string
	ExpireHours int
	BcryptCost  int
}

func NewAuthHandler(db *gorm.DB, jwtSecret string, expireHours, bcryptCost int) *AuthHandler {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthHandler{
		DB:          db,
		JWTSecret:   jwtSecret,
		ExpireHours: expireHours,
		BcryptCost:  bcryptCost,
	}
}

type registerReq struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	FullName string `json:"full_name" binding:"max=128"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid registration data.")
		return
	}

	var count int64
	if err := h.DB.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Registration failed.")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusConflict, util.CodeConflict, "Username is already taken.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Registration failed.")
		return
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		IsActive:     true,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Registration failed.")
		return
	}

	util.Success(c, util.Response{"id": user.ID, "username": user.Username})
}

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Username and password are required.")
		return
	}

	var user models.User
	err := h.DB.Where("username = ?", req.Username).First(&user).Error
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Invalid username or password.")
		return
	}
	if !user.IsActive {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Account is disabled.")
		return
	}

	ttl := time.Duration(h.ExpireHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	a := &actor.Actor{
		UserID:   user.ID,
		Username: user.Username,
		FullName: user.FullName,
		IP:       c.ClientIP(),
	}
	ctx := actor.WithActor(c.Request.Context(), a)

	session := models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := h.DB.WithContext(ctx).Create(&session).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Login failed.")
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, user.ID, session.ID, ttl)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Login failed.")
		return
	}

	now := time.Now()
	h.DB.Model(&user).Updates(map[string]any{
		"last_login_at": now,
		"last_login_ip": c.ClientIP(),
	})
	if err := audit.RecordLogin(ctx, h.DB, a); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Login failed.")
		return
	}

	util.Success(c, util.Response{
		"token":     token,
		"user_id":   user.ID,
		"username":  user.Username,
		"full_name": user.FullName,
	})
}

// Logout revokes the current session.
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID := c.GetString("sessionID")
	if sessionID == "" {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not logged in.")
		return
	}
	ctx := c.Request.Context()
	if err := h.DB.WithContext(ctx).Model(&models.Session{ID: sessionID}).
		Update("revoked", true).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Logout failed.")
		return
	}
	if err := audit.RecordLogout(ctx, h.DB, actor.FromContext(ctx)); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Logout failed.")
		return
	}
	util.Success(c, util.Response{"logged_out": true})
}
