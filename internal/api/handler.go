// ABOUTME: JSON HTTP handlers over the coordinator and social service.
// ABOUTME: Domain errors map to status codes in one place.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/harperreed/levelup/internal/coordinator"
	"github.com/harperreed/levelup/internal/game"
	"github.com/harperreed/levelup/internal/social"
)

// Handler serves the /api routes.
type Handler struct {
	coord  *coordinator.Coordinator
	social *social.Service
	log    *log.Logger
}

// NewHandler wires the handler.
func NewHandler(coord *coordinator.Coordinator, svc *social.Service, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{coord: coord, social: svc, log: logger.With("component", "api")}
}

type workoutReq struct {
	Minutes int `json:"minutes" binding:"required,min=1"`
}

type waterReq struct {
	ML int `json:"ml" binding:"required,min=1"`
}

type rewardReq struct {
	Level       int    `json:"level" binding:"required,min=1"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type messageReq struct {
	Text        string  `json:"text" binding:"required"`
	RecipientID *string `json:"recipient_id"`
}

// fail writes err with the status its kind maps to.
func (h *Handler) fail(c *gin.Context, err error) {
	var blocked *coordinator.ClaimBlockedError
	var perr *coordinator.PersistenceError

	switch {
	case errors.Is(err, coordinator.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.As(err, &blocked):
		c.JSON(http.StatusConflict, gin.H{
			"error":          err.Error(),
			"next_available": blocked.NextAvailable,
		})
	case errors.Is(err, coordinator.ErrNoLootBoxes):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, coordinator.ErrUnknownQuest):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &perr):
		h.log.Error("persistence failure", "op", perr.Op, "err", perr.Err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable, try again"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// GET /api/profile
func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.coord.Profile(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	inv, err := h.coord.LootBoxes(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	water, err := h.coord.Water(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":              p,
		"xp_to_next_level":     game.XPToNextLevel(p.XP),
		"minutes_to_next_ring": game.MinutesToNextLevel(p.TotalMinutes),
		"loot_boxes":           inv,
		"water":                water,
	})
}

// POST /api/workouts
func (h *Handler) AddWorkout(c *gin.Context) {
	var req workoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.coord.AddWorkoutMinutes(c, req.Minutes)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// POST /api/water
func (h *Handler) AddWater(c *gin.Context) {
	var req waterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bucket, err := h.coord.AddWater(c, req.ML)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bucket)
}

// GET /api/quests
func (h *Handler) ListQuests(c *gin.Context) {
	board, err := h.coord.Quests(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// POST /api/quests/:id/claim
func (h *Handler) ClaimQuest(c *gin.Context) {
	res, err := h.coord.ClaimQuest(c, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/lootboxes/open
func (h *Handler) OpenLootBox(c *gin.Context) {
	res, err := h.coord.OpenLootBox(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/rewards
func (h *Handler) ListRewards(c *gin.Context) {
	rewards, err := h.coord.Rewards(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rewards)
}

// POST /api/rewards
func (h *Handler) AddReward(c *gin.Context) {
	var req rewardReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r, err := h.coord.AddReward(c, req.Level, req.Title, req.Description)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// GET /api/leaderboard?limit=10
func (h *Handler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	entries, err := h.social.Leaderboard(c, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GET /api/messages?peer=<user>&limit=50
func (h *Handler) ListMessages(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	var err error
	var msgs any
	if peer := c.Query("peer"); peer != "" {
		msgs, err = h.social.Direct(c, peer, limit)
	} else {
		msgs, err = h.social.Global(c, limit)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// POST /api/messages
func (h *Handler) SendMessage(c *gin.Context) {
	var req messageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m, err := h.social.Send(c, req.Text, req.RecipientID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}
