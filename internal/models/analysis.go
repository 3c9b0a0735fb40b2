package models

import "time"

// Analysis is one ball-exit-velocity measurement derived from a video clip.
// The calibration and ball-tracking geometry is stored as raw pixel
// coordinates; all geometry fields default to zero when the client omits
// them and no consistency checks are applied.
type Analysis struct {
	ID                        int64     `gorm:"primaryKey" json:"id"`
	UserID                    int64     `gorm:"column:user_id;not null;index" json:"user_id"`
	VideoFilename             string    `gorm:"column:video_filename;not null" json:"video_filename"`
	FPS                       float64   `gorm:"column:fps;not null" json:"fps"`
	ExitVelocity              float64   `gorm:"column:exit_velocity;not null" json:"exit_velocity"`
	CalibrationDistancePixels float64   `gorm:"column:calibration_distance_pixels;not null" json:"calibration_distance_pixels"`
	BallDistancePixels        float64   `gorm:"column:ball_distance_pixels;not null" json:"ball_distance_pixels"`
	CalPoint1X                float64   `gorm:"column:cal_point1_x;not null" json:"cal_point1_x"`
	CalPoint1Y                float64   `gorm:"column:cal_point1_y;not null" json:"cal_point1_y"`
	CalPoint2X                float64   `gorm:"column:cal_point2_x;not null" json:"cal_point2_x"`
	CalPoint2Y                float64   `gorm:"column:cal_point2_y;not null" json:"cal_point2_y"`
	BallPoint1X               float64   `gorm:"column:ball_point1_x;not null" json:"ball_point1_x"`
	BallPoint1Y               float64   `gorm:"column:ball_point1_y;not null" json:"ball_point1_y"`
	BallPoint2X               float64   `gorm:"column:ball_point2_x;not null" json:"ball_point2_x"`
	BallPoint2Y               float64   `gorm:"column:ball_point2_y;not null" json:"ball_point2_y"`
	Notes                     *string   `gorm:"column:notes" json:"notes"`
	CreatedAt                 time.Time `gorm:"column:created_at" json:"created_at"`
}

// AnalysisWithOwner is the single-record projection joined with the owning
// user's display fields. The lookup itself is not owner-scoped; callers must
// compare UserID against the requesting principal.
type AnalysisWithOwner struct {
	Analysis  `gorm:"embedded"`
	UserName  *string `gorm:"column:user_name" json:"user_name"`
	UserEmail string  `gorm:"column:user_email" json:"user_email"`
}

// AnalysisStats holds per-user aggregates over exit velocity. The averages
// and extremes are pointers so an empty set reports null, not zero.
type AnalysisStats struct {
	TotalAnalyses int64    `gorm:"column:total_analyses" json:"total_analyses"`
	AvgVelocity   *float64 `gorm:"column:avg_velocity" json:"avg_velocity"`
	MaxVelocity   *float64 `gorm:"column:max_velocity" json:"max_velocity"`
	MinVelocity   *float64 `gorm:"column:min_velocity" json:"min_velocity"`
}
