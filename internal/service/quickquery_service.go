package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/pimacad/academico-api/internal/authz"
	"github.com/pimacad/academico-api/internal/models"
)

type quickQueryClassRepository interface {
	Get(ctx context.Context, actor authz.Actor, code string) (*models.Class, error)
}

type quickQueryActivityRepository interface {
	ListByClass(ctx context.Context, actor authz.Actor, classCode string) ([]models.Activity, error)
}

// ActivityPendency lists the RAs still owing something on one activity.
type ActivityPendency struct {
	ActivityID string   `json:"activity_id"`
	Title      string   `json:"title"`
	DueDate    string   `json:"due_date"`
	Students   []string `json:"students"`
}

// QuickQueryService answers the professor's day-to-day questions about a
// class: what activities exist, who has not delivered, and which
// deliveries still lack a grade.
type QuickQueryService struct {
	classes    quickQueryClassRepository
	activities quickQueryActivityRepository
	logger     *zap.Logger
}

// NewQuickQueryService constructs a QuickQueryService instance.
func NewQuickQueryService(classes quickQueryClassRepository, activities quickQueryActivityRepository, logger *zap.Logger) *QuickQueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuickQueryService{classes: classes, activities: activities, logger: logger}
}

// ClassActivities returns the activities registered for the class.
func (s *QuickQueryService) ClassActivities(ctx context.Context, actor authz.Actor, classCode string) ([]models.Activity, error) {
	if _, err := s.classes.Get(ctx, actor, classCode); err != nil {
		return nil, err
	}
	return s.activities.ListByClass(ctx, actor, classCode)
}

// DeliveryPendencies lists, per activity, the enrolled RAs that have not
// submitted anything yet.
func (s *QuickQueryService) DeliveryPendencies(ctx context.Context, actor authz.Actor, classCode string) ([]ActivityPendency, error) {
	class, err := s.classes.Get(ctx, actor, classCode)
	if err != nil {
		return nil, err
	}
	activities, err := s.activities.ListByClass(ctx, actor, classCode)
	if err != nil {
		return nil, err
	}

	pendencies := make([]ActivityPendency, 0, len(activities))
	for _, activity := range activities {
		missing := []string{}
		for _, ra := range class.Students {
			if _, ok := activity.Deliveries[ra]; !ok {
				missing = append(missing, ra)
			}
		}
		pendencies = append(pendencies, ActivityPendency{
			ActivityID: activity.ID,
			Title:      activity.Title,
			DueDate:    activity.DueDate,
			Students:   missing,
		})
	}
	return pendencies, nil
}

// GradePendencies lists, per activity, the RAs whose submission exists
// but has no grade yet.
func (s *QuickQueryService) GradePendencies(ctx context.Context, actor authz.Actor, classCode string) ([]ActivityPendency, error) {
	if _, err := s.classes.Get(ctx, actor, classCode); err != nil {
		return nil, err
	}
	activities, err := s.activities.ListByClass(ctx, actor, classCode)
	if err != nil {
		return nil, err
	}

	pendencies := make([]ActivityPendency, 0, len(activities))
	for _, activity := range activities {
		ungraded := []string{}
		for _, ra := range sortedDeliveryKeys(activity.Deliveries) {
			if activity.Deliveries[ra].Grade == nil {
				ungraded = append(ungraded, ra)
			}
		}
		pendencies = append(pendencies, ActivityPendency{
			ActivityID: activity.ID,
			Title:      activity.Title,
			DueDate:    activity.DueDate,
			Students:   ungraded,
		})
	}
	return pendencies, nil
}

func sortedDeliveryKeys(deliveries map[string]models.Delivery) []string {
	keys := make([]string, 0, len(deliveries))
	for ra := range deliveries {
		keys = append(keys, ra)
	}
	sort.Strings(keys)
	return keys
}
