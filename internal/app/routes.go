package app

import (
	"github.com/gin-gonic/gin"

	"github.com/waylog/core/internal/middleware"
	"github.com/waylog/core/internal/modules/accounts"
	"github.com/waylog/core/internal/modules/porting"
	"github.com/waylog/core/internal/pkg/assetstore"
	"github.com/waylog/core/internal/pkg/response"
)

func (a *App) registerRoutes(assets assetstore.Store) {
	a.router.NoRoute(func(c *gin.Context) { response.NotFound(c) })
	a.router.NoMethod(func(c *gin.Context) { response.MethodNotAllowed(c) })

	api := a.router.Group("/api/v2")
	api.GET("/ping", func(c *gin.Context) {
		c.String(200, "pong")
	})

	authMW := middleware.Auth(a.db)
	accounts.NewHandler(a.db).RegisterRoutes(api, authMW)
	porting.NewHandler(a.db, a.rdb, assets, a.cfg, a.logger).RegisterRoutes(api, authMW)
}
