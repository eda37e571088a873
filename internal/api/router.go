// Package api exposes the tax return service over HTTP.
package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/equitytax/tax-calculator/internal/service"
)

// NewRouter builds the gin engine with middleware and every route registered.
func NewRouter(svc *service.TaxReturnService, log *zap.Logger) *gin.Engine {
	h := NewHandler(svc, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(RequestLoggingMiddleware(h.log))

	r.GET("/healthz", h.Health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/estimate", h.Estimate)
		v1.GET("/brackets/:year", h.Brackets)
		v1.GET("/brackets/:year/tax", h.TaxForAmount)

		returns := v1.Group("/returns")
		returns.GET("", h.ListReturns)
		returns.POST("", h.CreateReturn)
		returns.GET("/:id", h.GetReturn)
		returns.PUT("/:id", h.UpdateReturn)
		returns.DELETE("/:id", h.DeleteReturn)
		returns.POST("/:id/submit", h.SubmitReturn)
		returns.GET("/:id/download", h.Download)

		admin := v1.Group("/admin")
		admin.POST("/returns/:id/review", h.ReviewReturn)
	}
	return r
}
