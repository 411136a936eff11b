package server

import (
	"net/http"

	"clipbounty/internal/config"
	"clipbounty/pkg/health"
	"clipbounty/pkg/middleware"
	"clipbounty/services/campaign"
	"clipbounty/services/creator"
	"clipbounty/services/ingest"
	"clipbounty/services/payout"
	"clipbounty/services/post"
	"clipbounty/services/rate"
	"clipbounty/services/team"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.api",
	fx.Provide(NewServer),
	fx.Provide(ProvideRouter),
)

type Server struct {
	log *zap.Logger

	ingest    *ingest.Service
	creators  *creator.Service
	rates     *rate.Service
	posts     *post.Service
	campaigns *campaign.Service
	teams     *team.Service
	payouts   *payout.Service
}

type Params struct {
	fx.In

	Log       *zap.Logger
	Ingest    *ingest.Service
	Creators  *creator.Service
	Rates     *rate.Service
	Posts     *post.Service
	Campaigns *campaign.Service
	Teams     *team.Service
	Payouts   *payout.Service
}

func NewServer(p Params) *Server {
	return &Server{
		log:       p.Log.Named("http.api"),
		ingest:    p.Ingest,
		creators:  p.Creators,
		rates:     p.Rates,
		posts:     p.Posts,
		campaigns: p.Campaigns,
		teams:     p.Teams,
		payouts:   p.Payouts,
	}
}

type RouterParams struct {
	fx.In

	Config *config.Config
	Server *Server
	Health health.HealthService
}

func ProvideRouter(p RouterParams) http.Handler {
	if p.Config.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Error())

	r.GET("/healthz", p.Health.Liveness)
	r.GET("/readyz", p.Health.Readiness)

	s := p.Server

	r.POST("/metrics/ingest", s.IngestMetrics)

	r.POST("/users/register", s.RegisterUser)
	r.GET("/users/active", s.ActiveUsers)
	r.POST("/users/confirm-verification", s.ConfirmVerification)
	r.POST("/users/payment-method", s.SetPaymentMethod)

	r.POST("/rates", s.UpsertRate)
	r.GET("/rates", s.ListRates)
	r.DELETE("/rates/:key", s.DeleteRate)

	r.GET("/posts", s.ListPosts)
	r.POST("/posts/bounty", s.AssignBounty)
	r.DELETE("/posts", s.RemovePost)

	r.POST("/campaigns", s.CreateCampaign)
	r.GET("/campaigns", s.ListCampaigns)
	r.GET("/campaigns/:id", s.GetCampaign)
	r.PATCH("/campaigns/:id", s.UpdateCampaign)

	r.POST("/teams", s.CreateTeam)
	r.GET("/teams", s.GetTeam)
	r.POST("/teams/join", s.JoinTeam)
	r.POST("/teams/leave", s.LeaveTeam)
	r.POST("/teams/commission", s.UpdateTeamCommission)
	r.POST("/teams/rotate-invite", s.RotateTeamInvite)

	r.POST("/payouts/settle", s.SettlePayout)
	r.GET("/payouts", s.ListPayouts)

	return r
}
