package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	accountdomain "github.com/stackbill/stackbill/internal/account/domain"
	auditdomain "github.com/stackbill/stackbill/internal/audit/domain"
	"github.com/stackbill/stackbill/internal/config"
	invoicedomain "github.com/stackbill/stackbill/internal/invoice/domain"
	"github.com/stackbill/stackbill/internal/observability"
	paymentdomain "github.com/stackbill/stackbill/internal/payment/domain"
	plandomain "github.com/stackbill/stackbill/internal/plan/domain"
	subscriptiondomain "github.com/stackbill/stackbill/internal/subscription/domain"
	ticketdomain "github.com/stackbill/stackbill/internal/ticket/domain"
)

type Params struct {
	fx.In

	Cfg     config.Config
	Log     *zap.Logger
	DB      *gorm.DB
	Redis   *redis.Client `optional:"true"`
	Metrics *observability.HTTPMetrics

	PlanSvc         plandomain.Service
	SubscriptionSvc subscriptiondomain.Service
	PaymentSvc      paymentdomain.Service
	InvoiceSvc      invoicedomain.Service
	TicketSvc       ticketdomain.Service
	AccountSvc      accountdomain.Service
	AuditSvc        auditdomain.Service
}

type Server struct {
	cfg     config.Config
	log     *zap.Logger
	db      *gorm.DB
	redis   *redis.Client
	metrics *observability.HTTPMetrics

	planSvc         plandomain.Service
	subscriptionSvc subscriptiondomain.Service
	paymentSvc      paymentdomain.Service
	invoiceSvc      invoicedomain.Service
	ticketSvc       ticketdomain.Service
	accountSvc      accountdomain.Service
	auditSvc        auditdomain.Service
}

func New(p Params) *Server {
	return &Server{
		cfg:             p.Cfg,
		log:             p.Log.Named("server"),
		db:              p.DB,
		redis:           p.Redis,
		metrics:         p.Metrics,
		planSvc:         p.PlanSvc,
		subscriptionSvc: p.SubscriptionSvc,
		paymentSvc:      p.PaymentSvc,
		invoiceSvc:      p.InvoiceSvc,
		ticketSvc:       p.TicketSvc,
		accountSvc:      p.AccountSvc,
		auditSvc:        p.AuditSvc,
	}
}

func NewEngine(s *Server) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.requestLogger())
	engine.Use(s.metricsMiddleware())

	s.RegisterRoutes(engine)
	return engine
}

// RegisterRoutes wires the portal API. The /api/node prefix and route
// names match what the web client calls.
func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", s.Healthz)
	engine.GET("/readyz", s.Readyz)
	engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := engine.Group("/api/node")
	api.Use(s.APIKeyRequired())
	{
		api.GET("/plans", s.ListPlans)
		api.GET("/plan/:id", s.GetPlan)
		api.POST("/createplan", s.SavePlan)
		api.DELETE("/plan/:id", s.DeletePlan)
		api.PATCH("/plan/:id/status", s.UpdatePlanStatus)
		api.GET("/plan/:id/subscribers", s.PlanSubscriberCount)

		api.GET("/userplan", s.UserPlan)
		api.GET("/alluserplans", s.AllUserPlans)
		api.POST("/cancel-subscription", s.CancelSubscription)

		api.POST("/create-payment-intent", s.CreatePaymentIntent)
		api.POST("/create-payment-invoice", s.CreatePaymentInvoice)
		api.GET("/get-payment-details/:paymentIntentId", s.PaymentDetails)
		api.GET("/get-payment-confirmation", s.PaymentConfirmation)
		api.GET("/cards", s.ListCards)
		api.POST("/setdefaultcard", s.SetDefaultCard)
		api.GET("/defaultcard", s.DefaultCard)
		api.DELETE("/card/:paymentMethodId", s.DeleteCard)

		api.GET("/invoices", s.AllInvoices)
		api.GET("/userinvoicehistory", s.UserInvoiceHistory)

		api.POST("/ticket", s.CreateTicket)
		api.GET("/allticket", s.AllTickets)
		api.PATCH("/ticket/:id/status", s.UpdateTicketStatus)

		api.GET("/userdetails", s.UserDetails)
		api.GET("/isadmin", s.IsAdmin)

		api.GET("/audit", s.ListAuditLogs)
		api.GET("/audit/export", s.ExportAuditLogs)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func (s *Server) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveRequest(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.Server.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(New),
	fx.Provide(NewEngine),
	fx.Invoke(RunHTTP),
)
