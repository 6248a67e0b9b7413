package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hackjudge-api/internal/dto"
	"github.com/noah-isme/hackjudge-api/internal/service"
	"github.com/noah-isme/hackjudge-api/internal/utils"
)

// LeaderboardHandler exposes the derived hackathon ranking.
type LeaderboardHandler struct {
	service service.LeaderboardService
	logger  zerolog.Logger
}

// NewLeaderboardHandler constructs the handler.
func NewLeaderboardHandler(svc service.LeaderboardService, logger zerolog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		service: svc,
		logger:  logger.With().Str("component", "leaderboard_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *LeaderboardHandler) Register(router fiber.Router) {
	router.Get("/:hackathonId/leaderboard", h.leaderboard)
}

func (h *LeaderboardHandler) leaderboard(c *fiber.Ctx) error {
	hackathonID, err := parseUintParam(c, "hackathonId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	entries, err := h.service.Leaderboard(c.Context(), hackathonID)
	if err != nil {
		h.logger.Error().Err(err).Uint("hackathon_id", hackathonID).Msg("failed to compute leaderboard")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "leaderboard computed", dto.NewLeaderboardResponse(entries))
}
