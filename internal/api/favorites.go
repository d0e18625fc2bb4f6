package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"aptrack/server/internal/models"
)

// dashboardTrendMonths is the window shown for each favorite on the
// dashboard.
const dashboardTrendMonths = 12

func (h *Handler) GetFavorites(c *gin.Context) {
	favorites, err := h.db.GetFavorites()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get favorites")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "관심 단지 조회에 실패했습니다"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"favorites": favorites,
	})
}

func (h *Handler) AddFavorite(c *gin.Context) {
	var fav models.Favorite
	if err := c.ShouldBindJSON(&fav); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if fav.AptName == "" || fav.RegionCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "apt_name과 region_code는 필수입니다"})
		return
	}

	id, err := h.db.AddFavorite(fav)
	if err != nil {
		h.logger.WithError(err).Error("Failed to add favorite")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "관심 단지 등록에 실패했습니다"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"id":      id,
	})
}

type favoriteCheckRequest struct {
	AptName    string `json:"apt_name" binding:"required"`
	RegionCode string `json:"region_code" binding:"required"`
}

func (h *Handler) CheckFavorite(c *gin.Context) {
	var req favoriteCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	tracked, err := h.db.IsFavorite(req.AptName, req.RegionCode)
	if err != nil {
		h.logger.WithError(err).Error("Favorite check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "관심 단지 확인에 실패했습니다"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"is_favorite": tracked,
	})
}

type favoriteNotesRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) UpdateFavorite(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "잘못된 id입니다"})
		return
	}

	var req favoriteNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if err := h.db.UpdateFavoriteNotes(id, req.Notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "관심 단지를 찾을 수 없습니다"})
			return
		}
		h.logger.WithError(err).Error("Failed to update favorite")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "관심 단지 수정에 실패했습니다"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) DeleteFavorite(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "잘못된 id입니다"})
		return
	}

	if err := h.db.DeleteFavorite(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "관심 단지를 찾을 수 없습니다"})
			return
		}
		h.logger.WithError(err).Error("Failed to delete favorite")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "관심 단지 삭제에 실패했습니다"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetFavoritesDashboard decorates each favorite with its recent transactions
// and price trend from the persistent store.
func (h *Handler) GetFavoritesDashboard(c *gin.Context) {
	favorites, err := h.db.GetFavorites()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get favorites")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "관심 단지 조회에 실패했습니다"})
		return
	}

	dashboard := make([]models.FavoriteWithData, 0, len(favorites))
	for _, fav := range favorites {
		entry := models.FavoriteWithData{Favorite: fav}

		transactions, err := h.db.GetApartmentTransactions(fav.AptName, fav.RegionCode, 10)
		if err != nil {
			h.logger.WithError(err).WithField("apt_name", fav.AptName).
				Warn("Failed to load favorite transactions")
		} else {
			entry.LatestTransactions = transactions
			entry.HasRecentData = len(transactions) > 0
		}

		trend, err := h.db.GetPriceTrend(fav.AptName, fav.RegionCode, dashboardTrendMonths)
		if err != nil {
			h.logger.WithError(err).WithField("apt_name", fav.AptName).
				Warn("Failed to load favorite price trend")
		} else {
			entry.PriceTrend = trend
		}

		dashboard = append(dashboard, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"dashboard": dashboard,
	})
}

func (h *Handler) GetApartmentTransactions(c *gin.Context) {
	regionCode := c.Param("region")
	aptName := c.Param("name")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	transactions, err := h.db.GetApartmentTransactions(aptName, regionCode, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get apartment transactions")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "거래 내역 조회에 실패했습니다"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"transactions": transactions,
	})
}

func (h *Handler) GetApartmentTrend(c *gin.Context) {
	regionCode := c.Param("region")
	aptName := c.Param("name")
	months, _ := strconv.Atoi(c.DefaultQuery("months", "12"))

	trend, err := h.db.GetPriceTrend(aptName, regionCode, months)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get price trend")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "가격 추이 조회에 실패했습니다"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"trend":   trend,
	})
}

func (h *Handler) GetApartmentsByRegion(c *gin.Context) {
	regionCode := c.Param("region")

	rollups, err := h.db.GetApartmentsByRegion(regionCode)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get apartments by region")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "단지 목록 조회에 실패했습니다"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"apartments": rollups,
	})
}

func (h *Handler) GetApartmentsByDong(c *gin.Context) {
	regionCode := c.Param("region")
	dongName := c.Param("dong")

	rollups, err := h.db.GetApartmentsByDong(regionCode, dongName)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get apartments by dong")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "단지 목록 조회에 실패했습니다"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"apartments": rollups,
	})
}

func (h *Handler) GetAlerts(c *gin.Context) {
	alerts, err := h.db.GetPriceAlerts()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get alerts")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "알림 조회에 실패했습니다"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"alerts":  alerts,
	})
}

func (h *Handler) CreateAlert(c *gin.Context) {
	var alert models.PriceAlert
	if err := c.ShouldBindJSON(&alert); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if alert.AptName == "" || alert.RegionCode == "" || alert.AlertType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "apt_name, region_code, alert_type은 필수입니다"})
		return
	}
	switch alert.AlertType {
	case models.AlertPriceDrop, models.AlertPriceRise, models.AlertNewTransaction:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "지원하지 않는 alert_type입니다"})
		return
	}

	id, err := h.db.CreatePriceAlert(alert)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create alert")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "알림 등록에 실패했습니다"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"id":      id,
	})
}

func (h *Handler) DeleteAlert(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "잘못된 id입니다"})
		return
	}

	if err := h.db.DeletePriceAlert(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "알림을 찾을 수 없습니다"})
			return
		}
		h.logger.WithError(err).Error("Failed to delete alert")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "알림 삭제에 실패했습니다"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) GetTelegramConfig(c *gin.Context) {
	config, err := h.db.GetTelegramConfig()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get telegram config")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "텔레그램 설정 조회에 실패했습니다"})
		return
	}
	if config == nil {
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"configured": false,
		})
		return
	}

	// Never echo the full token back.
	masked := config.BotToken
	if len(masked) > 8 {
		masked = masked[:4] + "..." + masked[len(masked)-4:]
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"configured": true,
		"config": gin.H{
			"bot_token":  masked,
			"chat_id":    config.ChatID,
			"is_enabled": config.IsEnabled,
		},
	})
}

func (h *Handler) UpdateTelegramConfig(c *gin.Context) {
	var req models.TelegramConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if err := h.db.SaveTelegramConfig(req); err != nil {
		h.logger.WithError(err).Error("Failed to save telegram config")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "텔레그램 설정 저장에 실패했습니다"})
		return
	}

	if config, err := h.db.GetTelegramConfig(); err == nil && config != nil {
		h.telegramService.UpdateConfig(config)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
