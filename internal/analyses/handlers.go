// Package analyses exposes the CRUD API for swing analyses. Every handler
// sits behind auth.RequireAuth; ownership of individual records is enforced
// here, not in the store.
package analyses

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"velotrack/internal/auth"
	"velotrack/internal/store"
)

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// createRequest mirrors the JSON body the capture frontend sends. Points
// and distances are optional and default to zero; only the three core
// measurement fields are required.
type createRequest struct {
	VideoFilename             string  `json:"videoFilename"`
	FPS                       float64 `json:"fps"`
	ExitVelocity              float64 `json:"exitVelocity"`
	CalibrationDistancePixels float64 `json:"calibrationDistancePixels"`
	BallDistancePixels        float64 `json:"ballDistancePixels"`
	CalPoint1                 *point  `json:"calPoint1"`
	CalPoint2                 *point  `json:"calPoint2"`
	BallPoint1                *point  `json:"ballPoint1"`
	BallPoint2                *point  `json:"ballPoint2"`
	Notes                     *string `json:"notes"`
}

// CreateHandler saves a new analysis for the authenticated user
func CreateHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		var req createRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		// Presence checks only; ranges and geometry are not validated
		if req.VideoFilename == "" || req.FPS == 0 || req.ExitVelocity == 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":    "Missing required fields",
				"required": []string{"videoFilename", "fps", "exitVelocity"},
			})
			return
		}

		params := store.CreateAnalysisParams{
			UserID:                    user.ID,
			VideoFilename:             req.VideoFilename,
			FPS:                       req.FPS,
			ExitVelocity:              req.ExitVelocity,
			CalibrationDistancePixels: req.CalibrationDistancePixels,
			BallDistancePixels:        req.BallDistancePixels,
			Notes:                     req.Notes,
		}
		if req.CalPoint1 != nil {
			params.CalPoint1X, params.CalPoint1Y = req.CalPoint1.X, req.CalPoint1.Y
		}
		if req.CalPoint2 != nil {
			params.CalPoint2X, params.CalPoint2Y = req.CalPoint2.X, req.CalPoint2.Y
		}
		if req.BallPoint1 != nil {
			params.BallPoint1X, params.BallPoint1Y = req.BallPoint1.X, req.BallPoint1.Y
		}
		if req.BallPoint2 != nil {
			params.BallPoint2X, params.BallPoint2Y = req.BallPoint2.X, req.BallPoint2.Y
		}

		id, err := s.CreateAnalysis(c.Request.Context(), params)
		if err != nil {
			log.Printf("Error saving analysis: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save analysis"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success":    true,
			"analysisId": id,
			"message":    "Analysis saved successfully",
		})
	}
}

// ListHandler returns the caller's analyses plus aggregate stats
func ListHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		ctx := c.Request.Context()
		list, err := s.ListAnalysesByOwner(ctx, user.ID)
		if err != nil {
			log.Printf("Error fetching analyses: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch analyses"})
			return
		}

		stats, err := s.AggregateStats(ctx, user.ID)
		if err != nil {
			log.Printf("Error fetching analysis stats: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch analyses"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"analyses": list,
			"stats":    stats,
		})
	}
}

// GetHandler fetches a single analysis by id. The store lookup is not
// owner-scoped, so the ownership check happens here: an id that exists but
// belongs to someone else is 403, a missing id is 404.
func GetHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
			return
		}

		analysis, err := s.GetAnalysisByID(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
			return
		}
		if err != nil {
			log.Printf("Error fetching analysis: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch analysis"})
			return
		}

		if analysis.UserID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"analysis": analysis,
		})
	}
}

// DeleteHandler removes an analysis owned by the caller. The compound
// predicate in the store makes "doesn't exist" and "not yours" the same
// response.
func DeleteHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found or access denied"})
			return
		}

		affected, err := s.DeleteAnalysis(c.Request.Context(), id, user.ID)
		if err != nil {
			log.Printf("Error deleting analysis: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete analysis"})
			return
		}

		if affected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found or access denied"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Analysis deleted successfully",
		})
	}
}
