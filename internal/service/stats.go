package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"sphinx_backend/internal/model"
)

type DashboardStats struct {
	Contacts          map[string]int64 `json:"contacts"`
	Quotes            map[string]int64 `json:"quotes"`
	ActiveServices    int64            `json:"activeServices"`
	PublishedProjects int64            `json:"publishedProjects"`
	PublishedPosts    int64            `json:"publishedPosts"`
}

// PendingCounts is what the daily digest reports.
type PendingCounts struct {
	Contacts int64
	Quotes   int64
}

func (p PendingCounts) Empty() bool { return p.Contacts == 0 && p.Quotes == 0 }

type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// Dashboard counts contacts and quotes per status, every known status included, plus
// the visible content.
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := &DashboardStats{}

	var err error
	if stats.Contacts, err = countByStatus(db, &model.Contact{}, model.ContactStatuses); err != nil {
		return nil, fmt.Errorf("count contacts: %w", err)
	}
	if stats.Quotes, err = countByStatus(db, &model.Quote{}, model.QuoteStatuses); err != nil {
		return nil, fmt.Errorf("count quotes: %w", err)
	}
	if err := db.Model(&model.Service{}).Where("active = ?", true).Count(&stats.ActiveServices).Error; err != nil {
		return nil, fmt.Errorf("count services: %w", err)
	}
	if err := db.Model(&model.Portfolio{}).Where("published = ?", true).Count(&stats.PublishedProjects).Error; err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}
	if err := db.Model(&model.Blog{}).Where("status = ?", model.BlogStatusPublished).Count(&stats.PublishedPosts).Error; err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	return stats, nil
}

func countByStatus(db *gorm.DB, table interface{}, statuses []string) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := db.Model(table).Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(statuses))
	for _, st := range statuses {
		counts[st] = 0
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// Pending counts contacts and quotes still in status "new".
func (s *StatsService) Pending(ctx context.Context) (PendingCounts, error) {
	var p PendingCounts
	db := s.db.WithContext(ctx)
	if err := db.Model(&model.Contact{}).Where("status = ?", model.ContactStatusNew).Count(&p.Contacts).Error; err != nil {
		return p, fmt.Errorf("count pending contacts: %w", err)
	}
	if err := db.Model(&model.Quote{}).Where("status = ?", model.QuoteStatusNew).Count(&p.Quotes).Error; err != nil {
		return p, fmt.Errorf("count pending quotes: %w", err)
	}
	return p, nil
}
