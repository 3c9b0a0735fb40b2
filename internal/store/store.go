// Package store is the data-access layer. Each method maps to a single
// parameterized statement; there are no multi-statement transactions.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"velotrack/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint (concurrent first logins for the same Google ID).
	ErrDuplicate = errors.New("duplicate record")
)

// Store wraps the database handle with typed operations. It is constructed
// once at startup and injected into every component that needs persistence.
type Store struct {
	db *gorm.DB
}

// New creates a Store backed by the given GORM connection
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateUserParams holds the profile fields captured on first login
type CreateUserParams struct {
	GoogleID string
	Email    string
	Name     *string
	Picture  *string
}

// CreateUser inserts a new user and returns its ID. Returns ErrDuplicate if
// the Google ID already exists; callers doing get-then-create must handle
// losing that race.
func (s *Store) CreateUser(ctx context.Context, p CreateUserParams) (int64, error) {
	now := time.Now().UTC()
	user := models.User{
		GoogleID:  p.GoogleID,
		Email:     p.Email,
		Name:      p.Name,
		Picture:   p.Picture,
		CreatedAt: now,
		LastLogin: now,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	return user.ID, nil
}

// GetUserByGoogleID retrieves a user by the provider-issued identifier
func (s *Store) GetUserByGoogleID(ctx context.Context, googleID string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("google_id = ?", googleID).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, ErrNotFound
		}
		return user, fmt.Errorf("get user by google id: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by primary key
func (s *Store) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, ErrNotFound
		}
		return user, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

// TouchLastLogin refreshes the user's last_login timestamp. Updating a
// nonexistent id affects zero rows and is not an error.
func (s *Store) TouchLastLogin(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login", time.Now().UTC()).Error
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// CreateAnalysisParams holds all writable analysis fields. Geometry values
// left at zero are stored as zero; Notes nil is stored as NULL.
type CreateAnalysisParams struct {
	UserID                    int64
	VideoFilename             string
	FPS                       float64
	ExitVelocity              float64
	CalibrationDistancePixels float64
	BallDistancePixels        float64
	CalPoint1X                float64
	CalPoint1Y                float64
	CalPoint2X                float64
	CalPoint2Y                float64
	BallPoint1X               float64
	BallPoint1Y               float64
	BallPoint2X               float64
	BallPoint2Y               float64
	Notes                     *string
}

// CreateAnalysis inserts a new analysis and returns its ID
func (s *Store) CreateAnalysis(ctx context.Context, p CreateAnalysisParams) (int64, error) {
	analysis := models.Analysis{
		UserID:                    p.UserID,
		VideoFilename:             p.VideoFilename,
		FPS:                       p.FPS,
		ExitVelocity:              p.ExitVelocity,
		CalibrationDistancePixels: p.CalibrationDistancePixels,
		BallDistancePixels:        p.BallDistancePixels,
		CalPoint1X:                p.CalPoint1X,
		CalPoint1Y:                p.CalPoint1Y,
		CalPoint2X:                p.CalPoint2X,
		CalPoint2Y:                p.CalPoint2Y,
		BallPoint1X:               p.BallPoint1X,
		BallPoint1Y:               p.BallPoint1Y,
		BallPoint2X:               p.BallPoint2X,
		BallPoint2Y:               p.BallPoint2Y,
		Notes:                     p.Notes,
		CreatedAt:                 time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(&analysis).Error; err != nil {
		return 0, fmt.Errorf("insert analysis: %w", err)
	}

	return analysis.ID, nil
}

// ListAnalysesByOwner returns all analyses owned by ownerID, newest first
func (s *Store) ListAnalysesByOwner(ctx context.Context, ownerID int64) ([]models.Analysis, error) {
	analyses := []models.Analysis{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&analyses).Error
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	return analyses, nil
}

// GetAnalysisByID fetches a single analysis joined with the owner's name and
// email. The query is not owner-scoped: the caller must compare the returned
// UserID against the requesting principal before returning any data.
func (s *Store) GetAnalysisByID(ctx context.Context, id int64) (models.AnalysisWithOwner, error) {
	var analysis models.AnalysisWithOwner
	err := s.db.WithContext(ctx).
		Table("analyses").
		Select("analyses.*, users.name AS user_name, users.email AS user_email").
		Joins("JOIN users ON users.id = analyses.user_id").
		Where("analyses.id = ?", id).
		Take(&analysis).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return analysis, ErrNotFound
		}
		return analysis, fmt.Errorf("get analysis by id: %w", err)
	}
	return analysis, nil
}

// DeleteAnalysis deletes the analysis matching both id and ownerID and
// returns the number of rows affected. Zero means the record either does not
// exist or belongs to someone else; the ambiguity is deliberate so callers
// cannot probe for other users' records.
func (s *Store) DeleteAnalysis(ctx context.Context, id, ownerID int64) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&models.Analysis{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete analysis: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// AggregateStats computes the exit-velocity aggregates for one owner in the
// database. With no rows the count is zero and the aggregates are null.
func (s *Store) AggregateStats(ctx context.Context, ownerID int64) (models.AnalysisStats, error) {
	var stats models.AnalysisStats
	err := s.db.WithContext(ctx).
		Model(&models.Analysis{}).
		Select("COUNT(*) AS total_analyses, AVG(exit_velocity) AS avg_velocity, MAX(exit_velocity) AS max_velocity, MIN(exit_velocity) AS min_velocity").
		Where("user_id = ?", ownerID).
		Scan(&stats).Error
	if err != nil {
		return stats, fmt.Errorf("aggregate stats: %w", err)
	}
	return stats, nil
}

// isUniqueViolation reports whether err is a uniqueness-constraint failure.
// GORM translates these to ErrDuplicatedKey when the driver supports it; the
// message check covers driver versions that predate the translator.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}
