package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tidemark-app/tidemark-scheduling/internal/domain"
)

const dayFormat = "2006-01-02"

// windowRecord is the stored form of an availability window. Energy is kept
// as its string label and parsed on read.
type windowRecord struct {
	ID          string `gorm:"primaryKey;column:id"`
	UserID      string `gorm:"column:user_id;index"`
	Label       string `gorm:"column:label"`
	Energy      string `gorm:"column:energy"`
	StartLocal  string `gorm:"column:start_local"`
	EndLocal    string `gorm:"column:end_local"`
	FromPrevDay bool   `gorm:"column:from_prev_day"`
}

func (windowRecord) TableName() string {
	return "schedule_windows"
}

// backlogItemRecord is one due backlog row. Weight is precomputed by the
// upstream writer; DueDay is a "YYYY-MM-DD" date in the user's timezone.
type backlogItemRecord struct {
	ID          string  `gorm:"primaryKey;column:id"`
	UserID      string  `gorm:"column:user_id;index"`
	SourceType  string  `gorm:"column:source_type"`
	Title       string  `gorm:"column:title"`
	Energy      string  `gorm:"column:energy"`
	DurationMin int     `gorm:"column:duration_min"`
	Weight      float64 `gorm:"column:weight"`
	HabitType   string  `gorm:"column:habit_type"`
	WindowID    string  `gorm:"column:window_id"`
	IsPractice  bool    `gorm:"column:is_practice"`
	DueDay      string  `gorm:"column:due_day"`
	Locked      bool    `gorm:"column:locked"`
	Done        bool    `gorm:"column:done"`
}

func (backlogItemRecord) TableName() string {
	return "backlog_items"
}

type scheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) domain.ScheduleRepository {
	return &scheduleRepository{
		db: db,
	}
}

func (r *scheduleRepository) MarkMissedBefore(ctx context.Context, userID string, cutoff time.Time) ([]string, error) {
	var ids []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.ScheduleInstance{}).
			Where("user_id = ? AND status = ? AND locked = ? AND start_utc < ?",
				userID, domain.StatusScheduled, false, cutoff).
			Order("id").
			Pluck("id", &ids).Error; err != nil {
			return err
		}

		if len(ids) == 0 {
			return nil
		}

		return tx.Model(&domain.ScheduleInstance{}).
			Where("id IN ?", ids).
			Updates(map[string]any{
				"status":     domain.StatusMissed,
				"updated_at": time.Now().UTC(),
			}).Error
	})
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *scheduleRepository) ListWindows(ctx context.Context, userID string) ([]domain.Window, error) {
	var records []windowRecord

	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_local, id").
		Find(&records).Error; err != nil {
		return nil, err
	}

	windows := make([]domain.Window, 0, len(records))
	for _, rec := range records {
		windows = append(windows, domain.Window{
			ID:          rec.ID,
			UserID:      rec.UserID,
			Label:       rec.Label,
			Energy:      domain.ParseEnergy(rec.Energy),
			StartLocal:  rec.StartLocal,
			EndLocal:    rec.EndLocal,
			FromPrevDay: rec.FromPrevDay,
		})
	}

	return windows, nil
}

func (r *scheduleRepository) ListBacklog(ctx context.Context, userID string, day time.Time) ([]domain.SchedulableItem, error) {
	var records []backlogItemRecord

	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND due_day <= ? AND locked = ? AND done = ?",
			userID, day.Format(dayFormat), false, false).
		Order("weight DESC, id").
		Find(&records).Error; err != nil {
		return nil, err
	}

	items := make([]domain.SchedulableItem, 0, len(records))
	for _, rec := range records {
		items = append(items, domain.SchedulableItem{
			ID:          rec.ID,
			UserID:      rec.UserID,
			SourceType:  domain.SourceType(rec.SourceType),
			Title:       rec.Title,
			Energy:      domain.ParseEnergy(rec.Energy),
			DurationMin: rec.DurationMin,
			Weight:      rec.Weight,
			HabitType:   domain.HabitType(rec.HabitType),
			WindowID:    rec.WindowID,
			IsPractice:  rec.IsPractice,
		})
	}

	return items, nil
}

func (r *scheduleRepository) ListInstancesInRange(ctx context.Context, userID string, start, end time.Time) ([]domain.ScheduleInstance, error) {
	var instances []domain.ScheduleInstance

	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status <> ? AND start_utc < ? AND end_utc > ?",
			userID, domain.StatusCanceled, end, start).
		Order("start_utc, id").
		Find(&instances).Error; err != nil {
		return nil, err
	}

	return instances, nil
}

func (r *scheduleRepository) SaveInstances(ctx context.Context, instances []domain.ScheduleInstance) error {
	if len(instances) == 0 {
		return nil
	}

	for i := range instances {
		if instances[i].ID == "" {
			return ErrInvalidInstanceData
		}
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&instances).Error
}

func (r *scheduleRepository) CancelInstances(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Model(&domain.ScheduleInstance{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"status":     domain.StatusCanceled,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *scheduleRepository) HabitTypesByInstance(ctx context.Context, instances []domain.ScheduleInstance) (map[string]domain.HabitType, error) {
	types := make(map[string]domain.HabitType, len(instances))

	habitIDs := make([]string, 0, len(instances))
	seen := make(map[string]struct{}, len(instances))
	for _, inst := range instances {
		types[inst.ID] = ""
		if inst.SourceType != domain.SourceHabit {
			continue
		}
		if _, ok := seen[inst.SourceID]; ok {
			continue
		}
		seen[inst.SourceID] = struct{}{}
		habitIDs = append(habitIDs, inst.SourceID)
	}

	if len(habitIDs) == 0 {
		return types, nil
	}

	var habits []domain.Habit
	if err := r.db.WithContext(ctx).
		Where("id IN ?", habitIDs).
		Find(&habits).Error; err != nil {
		return nil, err
	}

	byHabit := make(map[string]domain.HabitType, len(habits))
	for _, h := range habits {
		byHabit[h.ID] = h.Type
	}

	for _, inst := range instances {
		if inst.SourceType == domain.SourceHabit {
			types[inst.ID] = byHabit[inst.SourceID]
		}
	}

	return types, nil
}

func (r *scheduleRepository) GetHabit(ctx context.Context, habitID string) (*domain.Habit, error) {
	var habit domain.Habit

	if err := r.db.WithContext(ctx).
		Where("id = ?", habitID).
		First(&habit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, err
	}

	return &habit, nil
}

func (r *scheduleRepository) ListCompletions(ctx context.Context, habitID string) ([]domain.HabitCompletion, error) {
	var completions []domain.HabitCompletion

	if err := r.db.WithContext(ctx).
		Where("habit_id = ?", habitID).
		Order("completion_day, id").
		Find(&completions).Error; err != nil {
		return nil, err
	}

	return completions, nil
}

func (r *scheduleRepository) UpdateHabitStreak(ctx context.Context, habitID string, metrics domain.StreakMetrics) error {
	result := r.db.WithContext(ctx).Model(&domain.Habit{}).
		Where("id = ?", habitID).
		Updates(map[string]any{
			"current_streak":    metrics.Current,
			"longest_streak":    metrics.Longest,
			"last_completed_at": metrics.LastCompletedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

func (r *scheduleRepository) ListPracticeContexts(ctx context.Context, habitID string) ([]domain.PracticeContext, error) {
	var contexts []domain.PracticeContext

	if err := r.db.WithContext(ctx).
		Where("habit_id = ?", habitID).
		Order("id").
		Find(&contexts).Error; err != nil {
		return nil, err
	}

	return contexts, nil
}
