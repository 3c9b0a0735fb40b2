package database

import (
	"log"
	"time"

	"gorm.io/gorm"

	"velotrack/internal/models"
)

// SeedDevData populates the database with development test data.
// Idempotent: skips if data already exists.
func SeedDevData(db *gorm.DB) error {
	// Check if seed data already exists
	var existingUser models.User
	result := db.Where("google_id = ?", "dev-google-id-12345").First(&existingUser)
	if result.Error == nil {
		log.Println("Seed data already exists, skipping")
		return nil
	}

	name := "Dev User"
	now := time.Now().UTC()
	user := models.User{
		GoogleID:  "dev-google-id-12345",
		Email:     "dev@velotrack.local",
		Name:      &name,
		CreatedAt: now,
		LastLogin: now,
	}

	if err := db.Create(&user).Error; err != nil {
		return err
	}

	notes := "Front-toss session, upper deck camera"
	samples := []models.Analysis{
		{
			UserID:                    user.ID,
			VideoFilename:             "swing_001.mp4",
			FPS:                       240,
			ExitVelocity:              92.5,
			CalibrationDistancePixels: 410.2,
			BallDistancePixels:        1287.6,
			CalPoint1X:                120, CalPoint1Y: 340,
			CalPoint2X: 530, CalPoint2Y: 342,
			BallPoint1X: 610, BallPoint1Y: 410,
			BallPoint2X: 1720, BallPoint2Y: 155,
			Notes:     &notes,
			CreatedAt: now.Add(-48 * time.Hour),
		},
		{
			UserID:        user.ID,
			VideoFilename: "swing_002.mp4",
			FPS:           120,
			ExitVelocity:  88.1,
			CreatedAt:     now.Add(-24 * time.Hour),
		},
	}

	for i := range samples {
		if err := db.Create(&samples[i]).Error; err != nil {
			return err
		}
	}

	log.Println("Seeded dev data: 1 user, 2 analyses")
	return nil
}
