package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"prediction-escrow/internal/models"
)

// CompetitionFilter narrows ListCompetitions. Zero values match everything.
type CompetitionFilter struct {
	Creator     string
	Participant string
	State       *models.CompetitionState
	Limit       int
	Offset      int
}

// InsertCompetition writes c at its address. It returns false without error
// when the address or id is already taken.
func (r *Repository) InsertCompetition(ctx context.Context, c *models.Competition) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(c)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// GetCompetitionByID retrieves a competition by its human id
func (r *Repository) GetCompetitionByID(ctx context.Context, id string) (*models.Competition, error) {
	var c models.Competition
	err := r.db.WithContext(ctx).Where("competition_id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCompetitionByAddress retrieves a competition by its derived address
func (r *Repository) GetCompetitionByAddress(ctx context.Context, address string) (*models.Competition, error) {
	var c models.Competition
	err := r.db.WithContext(ctx).Where("address = ?", address).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCompetitions returns competitions newest first
func (r *Repository) ListCompetitions(ctx context.Context, f CompetitionFilter) ([]*models.Competition, error) {
	q := r.db.WithContext(ctx).Model(&models.Competition{})

	if f.Creator != "" {
		q = q.Where("creator = ?", f.Creator)
	}
	if f.Participant != "" {
		sub := r.db.Model(&models.Prediction{}).Select("competition").Where("user_address = ?", f.Participant)
		q = q.Where("address IN (?)", sub)
	}
	if f.State != nil {
		q = q.Where("state = ?", *f.State)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var competitions []*models.Competition
	if err := q.Order("created_at DESC").Order("competition_id ASC").Find(&competitions).Error; err != nil {
		return nil, err
	}
	return competitions, nil
}

// ListStaleCompetitions returns active competitions whose deadline passed
// before now.
func (r *Repository) ListStaleCompetitions(ctx context.Context, now int64, limit int) ([]*models.Competition, error) {
	var competitions []*models.Competition
	err := r.db.WithContext(ctx).
		Where("state = ? AND end_time < ?", models.CompetitionStateActive, now).
		Order("end_time ASC").
		Limit(limit).
		Find(&competitions).Error
	if err != nil {
		return nil, err
	}
	return competitions, nil
}

// MarkResolved flips an active competition to resolved. It returns false
// when the competition was not active any more.
func (r *Repository) MarkResolved(ctx context.Context, address, winner string, payout, residual uint64, resolvedAt int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Competition{}).
		Where("address = ? AND state = ?", address, models.CompetitionStateActive).
		Updates(map[string]interface{}{
			"state":       models.CompetitionStateResolved,
			"winner":      winner,
			"payout":      payout,
			"residual":    residual,
			"resolved_at": resolvedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// IncrementParticipants bumps the participant counter of a competition
func (r *Repository) IncrementParticipants(ctx context.Context, address string) error {
	return r.db.WithContext(ctx).
		Model(&models.Competition{}).
		Where("address = ?", address).
		Update("participants", gorm.Expr("participants + ?", 1)).Error
}

// InsertPrediction writes p at its address. It returns false without error
// when the user already holds a prediction for the competition.
func (r *Repository) InsertPrediction(ctx context.Context, p *models.Prediction) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(p)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// GetPredictions retrieves every prediction of a competition, oldest first
func (r *Repository) GetPredictions(ctx context.Context, competition string) ([]*models.Prediction, error) {
	var predictions []*models.Prediction
	err := r.db.WithContext(ctx).
		Where("competition = ?", competition).
		Order("timestamp ASC").
		Order("address ASC").
		Find(&predictions).Error
	if err != nil {
		return nil, err
	}
	return predictions, nil
}

// GetPrediction retrieves a user's prediction for a competition
func (r *Repository) GetPrediction(ctx context.Context, competition, user string) (*models.Prediction, error) {
	var p models.Prediction
	err := r.db.WithContext(ctx).
		Where("competition = ? AND user_address = ?", competition, user).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}
