package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"aptrack/server/internal/database"
	"aptrack/server/internal/regions"
	"aptrack/server/internal/search"
	"aptrack/server/internal/telegram"
)

func SetupRoutes(router *gin.Engine, db *database.Database, dir *regions.Directory, manager *search.Manager, tg *telegram.Service) {
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
	}))

	handler := NewHandler(db, dir, manager, tg, nil)

	api := router.Group("/api")
	{
		api.GET("/regions/tree", handler.GetRegionTree)
		api.GET("/regions/provinces", handler.GetProvinces)
		api.GET("/regions/districts/:province", handler.GetDistricts)
		api.GET("/regions/dongs/:province/:district", handler.GetDongs)

		api.POST("/search", handler.Search)
		api.POST("/search/start", handler.StartSearch)
		api.GET("/search/progress/:id", handler.GetSearchProgress)
		api.POST("/search/estimate", handler.EstimateSearch)

		api.GET("/favorites", handler.GetFavorites)
		api.POST("/favorites", handler.AddFavorite)
		api.POST("/favorites/check", handler.CheckFavorite)
		api.GET("/favorites/dashboard", handler.GetFavoritesDashboard)
		api.PUT("/favorites/:id", handler.UpdateFavorite)
		api.DELETE("/favorites/:id", handler.DeleteFavorite)

		api.GET("/apartment/:region/:name/transactions", handler.GetApartmentTransactions)
		api.GET("/apartment/:region/:name/trend", handler.GetApartmentTrend)
		api.GET("/apartments/:region", handler.GetApartmentsByRegion)
		api.GET("/apartments/:region/:dong", handler.GetApartmentsByDong)

		api.GET("/cache/statistics", handler.GetCacheStatistics)
		api.POST("/cache/invalidate", handler.InvalidateCache)

		api.GET("/alerts", handler.GetAlerts)
		api.POST("/alerts", handler.CreateAlert)
		api.DELETE("/alerts/:id", handler.DeleteAlert)

		api.GET("/telegram/config", handler.GetTelegramConfig)
		api.PUT("/telegram/config", handler.UpdateTelegramConfig)
	}
}
