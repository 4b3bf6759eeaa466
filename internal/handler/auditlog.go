package handler

import (
	"net/http"
	"strconv"

	"travel-ledger/internal/models"
	"travel-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuditLogHandler serves the read-only audit trail views. The trail is
// append-only; there is no write surface here.
type AuditLogHandler struct {
	DB       *gorm.DB
	PageSize int
}

func NewAuditLogHandler(db *gorm.DB, pageSize int) *AuditLogHandler {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &AuditLogHandler{DB: db, PageSize: pageSize}
}

// List returns audit records, newest first, filterable by entity type,
// entity id, action and user.
func (h *AuditLogHandler) List(c *gin.Context) {
	q := h.DB.Model(&models.AuditLog{})

	if entityType := c.Query("entity_type"); entityType != "" {
		q = q.Where("entity_type = ?", entityType)
	}
	if entityID := c.Query("entity_id"); entityID != "" {
		id, err := parseID(entityID)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid entity id.")
			return
		}
		q = q.Where("entity_id = ?", id)
	}
	if action := c.Query("action"); action != "" {
		q = q.Where("action = ?", action)
	}
	if userID := c.Query("user_id"); userID != "" {
		id, err := parseID(userID)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid user id.")
			return
		}
		q = q.Where("user_id = ?", id)
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load audit logs.")
		return
	}

	var logs []models.AuditLog
	err := q.Order("id DESC").
		Limit(h.PageSize).
		Offset((page - 1) * h.PageSize).
		Find(&logs).Error
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load audit logs.")
		return
	}

	util.Success(c, util.Response{
		"logs":      logs,
		"total":     total,
		"page":      page,
		"page_size": h.PageSize,
	})
}
