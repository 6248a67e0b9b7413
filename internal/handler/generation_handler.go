package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/hackjudge-api/internal/dto"
	"github.com/noah-isme/hackjudge-api/internal/middleware"
	"github.com/noah-isme/hackjudge-api/internal/models"
	"github.com/noah-isme/hackjudge-api/internal/service"
	"github.com/noah-isme/hackjudge-api/internal/utils"
	"github.com/noah-isme/hackjudge-api/internal/worker"
)

// Enqueuer is the slice of the worker pool the handler needs.
type Enqueuer interface {
	Enqueue(job worker.Job) bool
}

// GenerationHandler exposes the artifact generation endpoints: enqueue a job,
// read an artifact, list a team's artifacts.
type GenerationHandler struct {
	service   service.GenerationService
	pool      Enqueuer
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewGenerationHandler constructs the handler.
func NewGenerationHandler(svc service.GenerationService, pool Enqueuer, validate *validator.Validate, logger zerolog.Logger) *GenerationHandler {
	return &GenerationHandler{
		service:   svc,
		pool:      pool,
		validator: validate,
		logger:    logger.With().Str("component", "generation_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *GenerationHandler) Register(router fiber.Router) {
	router.Post("/generate", h.generate)
	router.Get("", h.get)
	router.Get("/teams/:teamId", h.listTeam)
}

// generate validates the request and queues it. The response is an immediate
// acknowledgement; callers poll the artifact for the terminal status.
func (h *GenerationHandler) generate(c *fiber.Ctx) error {
	var payload dto.GenerationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	key := payload.Key()
	if key.Kind.TeamScoped() && key.TeamID == nil {
		return utils.SendError(c, fiber.StatusBadRequest, "team_id is required for this artifact kind")
	}
	if !key.Kind.TeamScoped() && key.TeamID != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "team_id is not allowed for hackathon-wide artifacts")
	}

	queued := h.pool.Enqueue(worker.Job{
		Key: key,
		Opts: service.GenerateOptions{
			Force:        payload.Force,
			CriterionIDs: payload.CriterionIDs,
		},
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if !queued {
		return utils.SendError(c, fiber.StatusTooManyRequests, "generation queue is full, retry later")
	}

	ack := dto.GenerationAck{
		Kind:        payload.Kind,
		HackathonID: payload.HackathonID,
		TeamID:      payload.TeamID,
		Queued:      true,
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusAccepted, "generation queued", ack)
}

func (h *GenerationHandler) get(c *fiber.Ctx) error {
	kind := models.ArtifactKind(c.Query("kind"))
	hackathonID, err := parseQueryUint(c, "hackathon_id")
	if err != nil || hackathonID == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "hackathon_id query parameter is required")
	}

	key := models.ArtifactKey{HackathonID: hackathonID, Kind: kind}
	if teamID, err := parseQueryUint(c, "team_id"); err == nil && teamID != 0 {
		key.TeamID = &teamID
	}

	artifact, err := h.service.Get(c.Context(), key)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "artifact retrieved", dto.NewArtifactResponse(artifact))
}

func (h *GenerationHandler) listTeam(c *fiber.Ctx) error {
	teamID, err := parseUintParam(c, "teamId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	artifacts, err := h.service.ListTeamArtifacts(c.Context(), teamID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "artifacts retrieved", dto.NewArtifactResponses(artifacts))
}

func (h *GenerationHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrUnknownArtifactKind),
		errors.Is(err, service.ErrTeamRequired),
		errors.Is(err, service.ErrTeamNotAllowed):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "artifact not found")
	default:
		h.logger.Error().Err(err).Msg("generation request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
