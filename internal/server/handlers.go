package server

import (
	"net/http"

	"clipbounty/pkg/db/pagination"
	"clipbounty/pkg/errutil"
	"clipbounty/services/campaign"
	"clipbounty/services/creator"
	"clipbounty/services/ingest"
	"clipbounty/services/post"
	"clipbounty/services/rate"
	"clipbounty/services/team"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) IngestMetrics(c *gin.Context) {
	var req ingest.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	result, err := s.ingest.Ingest(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if len(result.Failed) > 0 {
		s.log.Warn("ingest batch had failures",
			zap.String("owner_id", req.OwnerID),
			zap.Int("processed", result.Processed),
			zap.Int("failed", len(result.Failed)),
		)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"processed": result.Processed,
	})
}

func (s *Server) RegisterUser(c *gin.Context) {
	var req creator.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	account, err := s.creators.Register(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"verification_code": account.VerificationCode,
	})
}

func (s *Server) ActiveUsers(c *gin.Context) {
	platform, ok := post.ParsePlatform(c.Query("platform"))
	if !ok {
		_ = c.Error(errutil.BadRequest("unsupported platform", nil))
		return
	}

	accounts, err := s.creators.ListVerified(c.Request.Context(), platform)
	if err != nil {
		_ = c.Error(err)
		return
	}

	users := make([]gin.H, 0, len(accounts))
	for _, a := range accounts {
		users = append(users, gin.H{
			"owner_id": a.CreatorID,
			"platform": a.Platform,
			"username": a.Username,
		})
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (s *Server) ConfirmVerification(c *gin.Context) {
	var req struct {
		OwnerID  string `json:"owner_id"`
		Platform string `json:"platform"`
		Username string `json:"username"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	platform, ok := post.ParsePlatform(req.Platform)
	if !ok {
		_ = c.Error(errutil.BadRequest("unsupported platform", nil))
		return
	}

	account, err := s.creators.ConfirmVerification(c.Request.Context(), req.OwnerID, platform, req.Username)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"verified": account.IsVerified,
	})
}

func (s *Server) SetPaymentMethod(c *gin.Context) {
	var req creator.SetPayPalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	pm, err := s.creators.SetPayPal(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "method": pm.Method})
}

func (s *Server) UpsertRate(c *gin.Context) {
	var req rate.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	def, err := s.rates.Upsert(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, def)
}

func (s *Server) ListRates(c *gin.Context) {
	defs, err := s.rates.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rates": defs})
}

func (s *Server) DeleteRate(c *gin.Context) {
	if err := s.rates.Delete(c.Request.Context(), c.Param("key")); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ListPosts(c *gin.Context) {
	ownerID := c.Query("owner_id")
	if ownerID == "" {
		_ = c.Error(errutil.BadRequest("owner_id is required", nil))
		return
	}

	posts, err := s.posts.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (s *Server) AssignBounty(c *gin.Context) {
	var req struct {
		Platform string `json:"platform"`
		URL      string `json:"url"`
		Tag      string `json:"tag"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	platform, ok := post.ParsePlatform(req.Platform)
	if !ok {
		_ = c.Error(errutil.BadRequest("unsupported platform", nil))
		return
	}

	p, err := s.posts.AssignBounty(c.Request.Context(), platform, req.URL, req.Tag)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (s *Server) RemovePost(c *gin.Context) {
	platform, ok := post.ParsePlatform(c.Query("platform"))
	if !ok {
		_ = c.Error(errutil.BadRequest("unsupported platform", nil))
		return
	}

	if err := s.posts.Remove(c.Request.Context(), platform, c.Query("url")); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) CreateCampaign(c *gin.Context) {
	var req campaign.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	created, err := s.campaigns.Create(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, created)
}

func (s *Server) ListCampaigns(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		_ = c.Error(errutil.BadRequest("invalid pagination", err))
		return
	}

	result, err := s.campaigns.List(c.Request.Context(), page)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) GetCampaign(c *gin.Context) {
	campaignOut, err := s.campaigns.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, campaignOut)
}

func (s *Server) UpdateCampaign(c *gin.Context) {
	var req campaign.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	updated, err := s.campaigns.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (s *Server) CreateTeam(c *gin.Context) {
	var req team.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	created, err := s.teams.Create(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, created)
}

func (s *Server) JoinTeam(c *gin.Context) {
	var req struct {
		UserID     string `json:"user_id"`
		InviteCode string `json:"invite_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	joined, err := s.teams.Join(c.Request.Context(), req.UserID, req.InviteCode)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, joined)
}

func (s *Server) LeaveTeam(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id"`
		TeamID string `json:"team_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	if err := s.teams.Leave(c.Request.Context(), req.UserID, req.TeamID); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) GetTeam(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		_ = c.Error(errutil.BadRequest("user_id is required", nil))
		return
	}

	t, err := s.teams.GetForUser(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	members, err := s.teams.ListMembers(c.Request.Context(), t.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"team": t, "members": members})
}

func (s *Server) UpdateTeamCommission(c *gin.Context) {
	var req struct {
		OwnerID        string  `json:"owner_id"`
		CommissionRate float64 `json:"commission_rate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	t, err := s.teams.UpdateCommission(c.Request.Context(), req.OwnerID, req.CommissionRate)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, t)
}

func (s *Server) RotateTeamInvite(c *gin.Context) {
	var req struct {
		OwnerID string `json:"owner_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	t, err := s.teams.RotateInvite(c.Request.Context(), req.OwnerID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, t)
}

func (s *Server) SettlePayout(c *gin.Context) {
	var req struct {
		OwnerID string `json:"owner_id"`
		Async   bool   `json:"async"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	if req.Async {
		if err := s.payouts.EnqueueSettle(c.Request.Context(), req.OwnerID); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
		return
	}

	settlement, err := s.payouts.Settle(c.Request.Context(), req.OwnerID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, settlement)
}

func (s *Server) ListPayouts(c *gin.Context) {
	ownerID := c.Query("owner_id")
	if ownerID == "" {
		_ = c.Error(errutil.BadRequest("owner_id is required", nil))
		return
	}

	records, err := s.payouts.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	total, err := s.payouts.TotalPaid(c.Request.Context(), ownerID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records, "total_usd": total})
}
