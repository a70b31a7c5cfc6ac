// ABOUTME: Gin router and HTTP server lifecycle for the levelup API.
// ABOUTME: Requests are logged through the structured logger.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine for h. Browser clients from origins are
// allowed through CORS; with no origins CORS is not enabled.
func NewRouter(h *Handler, origins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.log))

	if len(origins) > 0 {
		config := cors.DefaultConfig()
		config.AllowOrigins = origins
		config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
		config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		r.Use(cors.New(config))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/profile", h.GetProfile)
		api.POST("/workouts", h.AddWorkout)
		api.POST("/water", h.AddWater)
		api.GET("/quests", h.ListQuests)
		api.POST("/quests/:id/claim", h.ClaimQuest)
		api.POST("/lootboxes/open", h.OpenLootBox)
		api.GET("/rewards", h.ListRewards)
		api.POST("/rewards", h.AddReward)
		api.GET("/leaderboard", h.Leaderboard)
		api.GET("/events", h.Events)
		api.GET("/messages", h.ListMessages)
		api.POST("/messages", h.SendMessage)
	}

	return r
}

func requestLogger(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// Serve runs the router on addr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, r *gin.Engine) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
