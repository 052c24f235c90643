package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/grupoaf/afix/internal/handlers"
	"github.com/grupoaf/afix/internal/middleware"
	"github.com/grupoaf/afix/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.POST("/logout", handlers.Logout)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		api.POST("/quotes", middleware.OptionalAuthMiddleware(), handlers.SubmitQuote)

		projetos := api.Group("/projetos")
		{
			projetos.GET("/:id", handlers.GetProjeto)
			projetos.POST("/:id/angariar", middleware.AuthMiddleware(), handlers.ClaimProjeto)
			projetos.POST("/:id/desistir", middleware.AuthMiddleware(), handlers.ReleaseProjeto)
		}

		servicos := api.Group("/servicos", middleware.AuthMiddleware())
		{
			servicos.POST("/:id/angariar", handlers.ClaimServico)
			servicos.POST("/:id/desistir", handlers.ReleaseServico)
		}

		me := api.Group("/me", middleware.AuthMiddleware())
		{
			me.GET("/projetos", handlers.ListMyProjetos)
			me.PUT("/projetos/:id", handlers.UpdateMyProjeto)
			me.PUT("/user", handlers.UpdateSelf)
		}
	}

	return r
}
