package httpserver

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// buildRouter wires routes for the cart API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, manager CartManager) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.Default())

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := newCartHandlers(manager)

	stores := router.Group("/stores/:storeID")
	{
		stores.POST("/active-cart", h.setActiveCart)
		stores.POST("/active-cart/totals", h.activeCartTotals)
		stores.POST("/migrations", h.migrateGuestCart)
	}

	carts := router.Group("/carts/:cartID")
	{
		carts.PATCH("", h.updateDetails)
		carts.DELETE("", h.deleteCart)
		carts.PATCH("/status", h.updateStatus)
		carts.POST("/items", h.addItem)
		carts.PUT("/items/:itemID", h.updateItem)
		carts.DELETE("/items/:itemID", h.removeItem)
		carts.POST("/reorder", h.reorder)
		carts.POST("/duplicate", h.duplicate)
		carts.POST("/totals", h.totals)
		carts.GET("/validation", h.validate)
	}

	return router
}
