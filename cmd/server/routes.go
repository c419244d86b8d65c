package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wrapchain.backend/internal/interfaces/http/handlers"
	"wrapchain.backend/internal/interfaces/http/middleware"
	"wrapchain.backend/pkg/metrics"
)

const (
	serviceName    = "wrapchain-backend"
	serviceVersion = "0.1.0"
)

type routeDeps struct {
	authHandler       *handlers.AuthHandler
	membersHandler    *handlers.MembersHandler
	controllerHandler *handlers.ControllerHandler
	factoryHandler    *handlers.FactoryHandler
	tokenHandler      *handlers.TokenHandler
	authMiddleware    gin.HandlerFunc
}

func newRouter(d routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, d)
	return r
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Idempotency-Key, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID, X-Idempotency-Hit")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	idempotent := middleware.IdempotencyMiddleware()

	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/challenge", d.authHandler.Challenge)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.Refresh)
		}

		members := v1.Group("/members")
		members.Use(d.authMiddleware)
		{
			members.POST("", d.membersHandler.Initialize)
			members.GET("/:id", d.membersHandler.GetRegistry)
			members.PUT("/:id/custodian", d.membersHandler.SetCustodian)
			members.POST("/:id/merchants", d.membersHandler.AddMerchant)
			members.GET("/:id/merchants", d.membersHandler.ListMerchants)
			members.GET("/:id/merchants/:merchant", d.membersHandler.GetMerchant)
			members.DELETE("/:id/merchants/:merchant", d.membersHandler.RemoveMerchant)
			members.POST("/:id/merchants/:merchant/reactivate", d.membersHandler.ReactivateMerchant)
		}

		controllers := v1.Group("/controllers")
		controllers.Use(d.authMiddleware)
		{
			controllers.POST("", d.controllerHandler.Initialize)
			controllers.GET("/:id", d.controllerHandler.GetController)
			controllers.PUT("/:id/members", d.controllerHandler.SetMembers)
			controllers.PUT("/:id/factory", d.controllerHandler.SetFactory)
		}

		factories := v1.Group("/factories")
		factories.Use(d.authMiddleware)
		{
			factories.POST("", d.factoryHandler.Initialize)
			factories.GET("/:id", d.factoryHandler.GetFactory)
			factories.GET("/:id/requests", d.factoryHandler.ListRequests)

			factories.PUT("/:id/custodian-deposit-addresses/:merchant", d.factoryHandler.SetCustodianDepositAddress)
			factories.PUT("/:id/merchant-deposit-address", d.factoryHandler.SetMerchantDepositAddress)
			factories.GET("/:id/deposit-addresses/:kind/:merchant", d.factoryHandler.GetDepositAddress)

			factories.POST("/:id/mint-requests", idempotent, d.factoryHandler.AddMintRequest)
			factories.GET("/:id/mint-requests/:txid", d.factoryHandler.GetMintRequest)
			factories.POST("/:id/mint-requests/:txid/cancel", idempotent, d.factoryHandler.CancelMintRequest)
			factories.POST("/:id/mint-requests/:txid/confirm", idempotent, d.factoryHandler.ConfirmMintRequest)
			factories.POST("/:id/mint-requests/:txid/reject", idempotent, d.factoryHandler.RejectMintRequest)

			factories.POST("/:id/burn-requests", idempotent, d.factoryHandler.AddBurnRequest)
			factories.GET("/:id/burn-requests/:nonce", d.factoryHandler.GetBurnRequest)
			factories.POST("/:id/burn-requests/:nonce/confirm", idempotent, d.factoryHandler.ConfirmBurnRequest)
		}

		tokens := v1.Group("/tokens")
		tokens.Use(d.authMiddleware)
		{
			tokens.POST("", d.tokenHandler.CreateToken)
			tokens.GET("/:id", d.tokenHandler.GetToken)
			tokens.POST("/:id/accounts", d.tokenHandler.OpenAccount)
			tokens.GET("/:id/accounts/:owner", d.tokenHandler.GetAccount)
		}
	}
}
