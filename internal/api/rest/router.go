package rest

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the handler's endpoints onto the gin engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	v1 := r.Group("/api/v1")
	{
		cases := v1.Group("/cases")
		{
			cases.POST("", h.SubmitCase)
			cases.GET("", h.ListCases)
			cases.GET("/:id", h.GetCase)
			cases.GET("/:id/arguments", h.ListArguments)
			cases.POST("/:id/votes", h.Vote)
			cases.POST("/:id/arguments", h.SubmitArgument)
			cases.POST("/:id/arguments/:arg_id/likes", h.LikeArgument)
			cases.DELETE("/:id/arguments/:arg_id/likes", h.UnlikeArgument)
		}

		moderation := v1.Group("/moderation/cases")
		{
			moderation.POST("/:id/approve", h.ApproveCase)
			moderation.POST("/:id/reject", h.RejectCase)
		}

		users := v1.Group("/users")
		{
			users.POST("", h.RegisterUser)
			users.GET("/:id", h.GetUser)
			users.POST("/:id/wallet", h.ConnectWallet)
			users.GET("/:id/rewards", h.ListRewards)
			users.GET("/:id/badges", h.GetUserBadges)
		}

		v1.POST("/rewards/:id/claim", h.ClaimReward)
		v1.GET("/badges", h.GetBadgeCatalog)
		v1.GET("/leaderboard", h.GetLeaderboard)
		v1.GET("/leaderboard/users/:id", h.GetUserRank)
	}
}
