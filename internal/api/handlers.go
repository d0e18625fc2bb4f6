package api

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"aptrack/server/internal/database"
	"aptrack/server/internal/regions"
	"aptrack/server/internal/search"
	"aptrack/server/internal/telegram"
)

type Handler struct {
	db              *database.Database
	logger          *logrus.Logger
	regions         *regions.Directory
	searchManager   *search.Manager
	telegramService *telegram.Service
}

func NewHandler(db *database.Database, dir *regions.Directory, manager *search.Manager, tg *telegram.Service, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	// Load existing Telegram configuration
	if config, err := db.GetTelegramConfig(); err == nil && config != nil {
		tg.UpdateConfig(config)
	}

	return &Handler{
		db:              db,
		logger:          logger,
		regions:         dir,
		searchManager:   manager,
		telegramService: tg,
	}
}

func (h *Handler) GetProvinces(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"provinces": h.regions.Provinces(),
	})
}

func (h *Handler) GetDistricts(c *gin.Context) {
	province := c.Param("province")
	districts := h.regions.Districts(province)
	if len(districts) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "알 수 없는 시/도입니다",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"districts": districts,
	})
}

// GetRegionTree returns the full province/district/dong hierarchy as uniform
// region nodes, for clients that want the whole selector in one call.
func (h *Handler) GetRegionTree(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"regions": h.regions.Tree(),
	})
}

func (h *Handler) GetDongs(c *gin.Context) {
	province := c.Param("province")
	district := c.Param("district")
	dongs := h.regions.Dongs(province, district)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"dongs":   dongs,
	})
}

func (h *Handler) Search(c *gin.Context) {
	var req search.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := h.searchManager.Run(req)
	if err != nil {
		h.logger.WithError(err).Error("Search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "조회에 실패했습니다"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}

func (h *Handler) StartSearch(c *gin.Context) {
	var req search.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	searchID := h.searchManager.StartSearch(req)
	c.JSON(http.StatusAccepted, gin.H{
		"success":   true,
		"search_id": searchID,
	})
}

func (h *Handler) GetSearchProgress(c *gin.Context) {
	searchID := c.Param("id")
	state, ok := h.searchManager.Progress().Get(searchID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "진행 중인 조회를 찾을 수 없습니다",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"progress": state,
	})
}

func (h *Handler) EstimateSearch(c *gin.Context) {
	var req search.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"estimate": h.searchManager.EstimateSearch(req),
	})
}

func (h *Handler) GetCacheStatistics(c *gin.Context) {
	stats, err := h.db.GetCacheStatistics()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get cache statistics")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "캐시 통계 조회에 실패했습니다"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"statistics": stats,
	})
}

type invalidateRequest struct {
	RegionCode string `json:"region_code"`
}

func (h *Handler) InvalidateCache(c *gin.Context) {
	var req invalidateRequest
	// Body is optional; an empty region code sweeps expired snapshots.
	_ = c.ShouldBindJSON(&req)

	deleted, err := h.db.InvalidateCache(req.RegionCode)
	if err != nil {
		h.logger.WithError(err).Error("Cache invalidation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "캐시 삭제에 실패했습니다"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"deleted": deleted,
	})
}
