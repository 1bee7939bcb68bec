package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/soukly/payments/internal/config"
	"github.com/soukly/payments/internal/gateway"
	"github.com/soukly/payments/internal/ledger"
	"github.com/soukly/payments/internal/notifier"
	obslogger "github.com/soukly/payments/internal/observability/logger"
	obsmetrics "github.com/soukly/payments/internal/observability/metrics"
	"github.com/soukly/payments/internal/payment"
	paymentdomain "github.com/soukly/payments/internal/payment/domain"
	"github.com/soukly/payments/internal/ratelimit"
	"github.com/soukly/payments/internal/seller"
	sellerdomain "github.com/soukly/payments/internal/seller/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	ledger.Module,
	seller.Module,
	gateway.Module,
	notifier.Module,
	ratelimit.Module,
	obsmetrics.Module,
	payment.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, limiter *ratelimit.Limiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Log:             log,
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Added after health and metrics so probes are never throttled;
	// routes registered from here on inherit the limiter.
	r.Use(ratelimit.GinMiddleware(limiter))

	return r
}

func registerGin(log *zap.Logger, limiter *ratelimit.Limiter) *gin.Engine {
	return NewEngine(log, limiter)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	paymentSvc paymentdomain.Service
	webhookSvc paymentdomain.WebhookService
	sellers    sellerdomain.Repository
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	PaymentSvc paymentdomain.Service
	WebhookSvc paymentdomain.WebhookService
	Sellers    sellerdomain.Repository
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		db:         p.DB,
		log:        p.Log.Named("server"),
		genID:      p.GenID,
		paymentSvc: p.PaymentSvc,
		webhookSvc: p.WebhookSvc,
		sellers:    p.Sellers,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api/payments")

	api.POST("/create-payment-intent", s.HandleCreatePaymentIntent)
	api.POST("/refund", s.HandleRefund)
	api.POST("/stripe-webhook", s.HandleStripeWebhook)
	api.GET("", s.HandleListPayments)
	api.GET("/:orderId", s.HandleGetPayment)
	api.POST("/:orderId/capture", s.HandleCapture)
	api.POST("/:orderId/cancel", s.HandleCancel)

	s.engine.POST("/api/sellers", s.HandleUpsertSeller)
}
