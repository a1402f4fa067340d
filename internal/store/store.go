package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bedfinder-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	ReplaceHospitals(ctx context.Context, hospitals []model.Hospital) ([]string, error)
	ListHospitals(ctx context.Context) ([]model.Hospital, error)
	GetHospital(ctx context.Context, id string) (*model.Hospital, error)
	MutateERAvailability(ctx context.Context, now time.Time, step ERStep) ([]string, error)
	AvailabilityHistory(ctx context.Context, hospitalID string, limit int) ([]model.AvailabilityEvent, error)
	Stats(ctx context.Context) (Stats, error)

	GetLocationPreference(ctx context.Context, clientID string) (*model.LocationPreference, error)
	SaveLocationPreference(ctx context.Context, pref *model.LocationPreference) error

	SaveSubscription(ctx context.Context, sub *model.AlertSubscription, hospitalIDs []string) error
	GetSubscription(ctx context.Context, endpoint string) (*model.AlertSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForHospital(ctx context.Context, hospitalID string) ([]model.AlertSubscription, error)

	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// ReplaceHospitals makes the given set the complete hospital table. Changed
// bed counts are recorded as availability events and the ids of hospitals
// whose ER went from zero to non-zero are returned.
func (s *gormStore) ReplaceHospitals(ctx context.Context, hospitals []model.Hospital) ([]string, error) {
	for i := range hospitals {
		if err := hospitals[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid hospital record: %w", err)
		}
	}

	var reopened []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := fetchAllHospitals(tx)
		if err != nil {
			return fmt.Errorf("failed to fetch current hospitals: %w", err)
		}

		ids := make([]string, 0, len(hospitals))
		var events []model.AvailabilityEvent

		for _, h := range hospitals {
			ids = append(ids, h.ID)
			old, ok := existing[h.ID]
			if !ok {
				continue
			}
			for _, e := range diffBeds(old, h, model.SourceFeed, h.LastUpdated) {
				if e.Category == model.CategoryER && e.Reopened() {
					reopened = append(reopened, h.ID)
				}
				events = append(events, e)
			}
		}

		if len(hospitals) > 0 {
			rows := make([]model.Hospital, len(hospitals))
			for i, h := range hospitals {
				rows[i] = h.Clone()
				rows[i].ClearDerived()
				rows[i].Position = i
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(&rows).Error; err != nil {
				return fmt.Errorf("batch upsert hospitals failed: %w", err)
			}
		}

		if err := deleteMissingHospitals(tx, ids); err != nil {
			return err
		}

		if len(events) > 0 {
			if err := tx.Create(&events).Error; err != nil {
				return fmt.Errorf("failed to record availability events: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug().Int("hospitals", len(hospitals)).Int("reopened", len(reopened)).Msg("hospital set replaced")
	return reopened, nil
}

func deleteMissingHospitals(tx *gorm.DB, keep []string) error {
	if len(keep) == 0 {
		if err := tx.Exec("DELETE FROM " + subscriptionJoinTable).Error; err != nil {
			return fmt.Errorf("failed to clear subscription mappings: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Hospital{}).Error; err != nil {
			return fmt.Errorf("failed to clear hospitals: %w", err)
		}
		return nil
	}

	if err := tx.Exec("DELETE FROM "+subscriptionJoinTable+" WHERE hospital_id NOT IN ?", keep).Error; err != nil {
		return fmt.Errorf("failed to delete stale subscription mappings: %w", err)
	}
	if err := tx.Where("id NOT IN ?", keep).Delete(&model.Hospital{}).Error; err != nil {
		return fmt.Errorf("failed to delete stale hospitals: %w", err)
	}
	return nil
}

func diffBeds(old, cur model.Hospital, source string, at time.Time) []model.AvailabilityEvent {
	var events []model.AvailabilityEvent
	for _, c := range model.BedCategories {
		prev, next := old.Bed(c).Available, cur.Bed(c).Available
		if prev == next {
			continue
		}
		events = append(events, model.AvailabilityEvent{
			HospitalID: cur.ID,
			Category:   c,
			Previous:   prev,
			Current:    next,
			Source:     source,
			ObservedAt: at,
		})
	}
	return events
}

func (s *gormStore) ListHospitals(ctx context.Context) ([]model.Hospital, error) {
	var hospitals []model.Hospital
	if err := s.db.WithContext(ctx).Order("position").Order("id").Find(&hospitals).Error; err != nil {
		return nil, fmt.Errorf("failed to list hospitals: %w", err)
	}
	return hospitals, nil
}

func (s *gormStore) GetHospital(ctx context.Context, id string) (*model.Hospital, error) {
	var h model.Hospital
	if err := s.db.WithContext(ctx).First(&h, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("hospital %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch hospital %s: %w", id, err)
	}
	return &h, nil
}

// MutateERAvailability applies step to every hospital's ER availability in a
// single transaction, clamping the result to [0, total]. LastUpdated is set
// to now for every hospital.
func (s *gormStore) MutateERAvailability(ctx context.Context, now time.Time, step ERStep) ([]string, error) {
	var reopened []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var hospitals []model.Hospital
		if err := tx.Order("position").Order("id").Find(&hospitals).Error; err != nil {
			return fmt.Errorf("failed to load hospitals: %w", err)
		}

		var events []model.AvailabilityEvent
		for _, h := range hospitals {
			prev := h.Beds.ER.Available
			next := clamp(prev+step(h), 0, h.Beds.ER.Total)

			if err := tx.Model(&model.Hospital{}).Where("id = ?", h.ID).Updates(map[string]any{
				"beds_er_available": next,
				"last_updated":      now,
			}).Error; err != nil {
				return fmt.Errorf("failed to update hospital %s: %w", h.ID, err)
			}

			if next == prev {
				continue
			}
			e := model.AvailabilityEvent{
				HospitalID: h.ID,
				Category:   model.CategoryER,
				Previous:   prev,
				Current:    next,
				Source:     model.SourceLiveness,
				ObservedAt: now,
			}
			if e.Reopened() {
				reopened = append(reopened, h.ID)
			}
			events = append(events, e)
		}

		if len(events) > 0 {
			if err := tx.Create(&events).Error; err != nil {
				return fmt.Errorf("failed to record availability events: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reopened, nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// AvailabilityHistory returns the most recent events of a hospital, newest first.
func (s *gormStore) AvailabilityHistory(ctx context.Context, hospitalID string, limit int) ([]model.AvailabilityEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []model.AvailabilityEvent
	if err := s.db.WithContext(ctx).
		Where("hospital_id = ?", hospitalID).
		Order("observed_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch availability history for %s: %w", hospitalID, err)
	}
	return events, nil
}

func (s *gormStore) Stats(ctx context.Context) (Stats, error) {
	var row struct {
		TotalHospitals    int
		TotalAvailable    int
		AverageERWait     float64
		EmergencyServices int
	}
	err := s.db.WithContext(ctx).Model(&model.Hospital{}).Select(
		"COUNT(*) AS total_hospitals, " +
			"COALESCE(SUM(beds_er_available + beds_icu_available + beds_pediatric_available + beds_maternity_available), 0) AS total_available, " +
			"COALESCE(AVG(wait_er), 0) AS average_er_wait, " +
			"COALESCE(SUM(CASE WHEN feature_emergency_24h THEN 1 ELSE 0 END), 0) AS emergency_services",
	).Scan(&row).Error
	if err != nil {
		return Stats{}, fmt.Errorf("failed to aggregate hospital stats: %w", err)
	}
	return Stats(row), nil
}

func (s *gormStore) GetLocationPreference(ctx context.Context, clientID string) (*model.LocationPreference, error) {
	var pref model.LocationPreference
	if err := s.db.WithContext(ctx).First(&pref, "client_id = ?", clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("location preference %s: %w", clientID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch location preference %s: %w", clientID, err)
	}
	return &pref, nil
}

func (s *gormStore) SaveLocationPreference(ctx context.Context, pref *model.LocationPreference) error {
	if pref.UpdatedAt.IsZero() {
		pref.UpdatedAt = time.Now()
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"location_denied", "updated_at"}),
	}).Create(pref).Error; err != nil {
		return fmt.Errorf("failed to save location preference %s: %w", pref.ClientID, err)
	}
	return nil
}

// SaveSubscription creates or replaces a subscription and its hospital set.
// Unknown hospital ids are ignored.
func (s *gormStore) SaveSubscription(ctx context.Context, sub *model.AlertSubscription, hospitalIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if sub.CreatedAt.IsZero() {
			sub.CreatedAt = time.Now()
		}
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(sub).Error; err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}

		var hospitals []*model.Hospital
		if len(hospitalIDs) > 0 {
			if err := tx.Where("id IN ?", hospitalIDs).Find(&hospitals).Error; err != nil {
				return fmt.Errorf("failed to resolve subscribed hospitals: %w", err)
			}
		}

		if err := tx.Model(sub).Association("Hospitals").Replace(&hospitals); err != nil {
			return fmt.Errorf("failed to replace subscribed hospitals: %w", err)
		}
		return nil
	})
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.AlertSubscription, error) {
	var sub model.AlertSubscription
	if err := s.db.WithContext(ctx).Preload("Hospitals").First(&sub, "endpoint = ?", endpoint).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("subscription: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch subscription: %w", err)
	}
	return &sub, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM "+subscriptionJoinTable+" WHERE alert_subscription_endpoint = ?", endpoint).Error; err != nil {
			return fmt.Errorf("failed to delete subscription mappings: %w", err)
		}
		if err := tx.Where("endpoint = ?", endpoint).Delete(&model.AlertSubscription{}).Error; err != nil {
			return fmt.Errorf("failed to delete subscription: %w", err)
		}
		return nil
	})
}

func (s *gormStore) SubscriptionsForHospital(ctx context.Context, hospitalID string) ([]model.AlertSubscription, error) {
	var subs []model.AlertSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN "+subscriptionJoinTable+" shm ON shm.alert_subscription_endpoint = alert_subscriptions.endpoint").
		Where("shm.hospital_id = ?", hospitalID).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions for hospital %s: %w", hospitalID, err)
	}
	return subs, nil
}

func fetchAllHospitals(tx *gorm.DB) (map[string]model.Hospital, error) {
	var hospitals []model.Hospital
	if err := tx.Find(&hospitals).Error; err != nil {
		return nil, err
	}
	out := make(map[string]model.Hospital, len(hospitals))
	for _, h := range hospitals {
		out[h.ID] = h
	}
	return out, nil
}
