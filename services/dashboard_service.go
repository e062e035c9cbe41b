package services

import (
	"context"
	"errors"
	"sort"

	"kayit.link/configs/configslog"
	"kayit.link/models"
	"kayit.link/repositories"

	"go.uber.org/zap"
)

// DashboardServiceError özel servis hataları
type DashboardServiceError string

func (e DashboardServiceError) Error() string { return string(e) }

const (
	ErrStatsEventNotFound DashboardServiceError = "istatistikler için etkinlik bulunamadı"
	ErrStatsFailed        DashboardServiceError = "istatistikler hesaplanamadı"
)

// OptionCount bir seçeneğin kaç kayıtta seçildiğini tutar.
type OptionCount struct {
	Option string
	Count  int
}

// FieldStat kategorik bir form alanının cevap dağılımıdır.
type FieldStat struct {
	FieldKey string
	Label    string
	Type     models.FieldType
	Counts   []OptionCount // Çoktan aza sıralı
}

// EventStats etkinlik dashboard'unda gösterilen özet.
type EventStats struct {
	EventID            uint
	Slug               string
	Title              string
	TotalRegistrations int
	CheckedInCount     int
	CheckInRate        float64 // 0..100
	StatusCounts       map[models.RegStatus]int
	FieldStats         []FieldStat
}

// Overview panel ana sayfasındaki genel sayılardır.
type Overview struct {
	TotalEvents        int64
	TotalRegistrations int64
}

// IDashboardService panel istatistikleri için arayüz.
type IDashboardService interface {
	GetEventStats(ctx context.Context, slug string) (*EventStats, error)
	GetOverview(ctx context.Context) (*Overview, error)
}

// DashboardService IDashboardService arayüzünü uygular.
type DashboardService struct {
	eventRepo        repositories.IEventRepository
	registrationRepo repositories.IRegistrationRepository
}

// NewDashboardService yeni bir DashboardService örneği oluşturur.
func NewDashboardService() IDashboardService {
	return &DashboardService{
		eventRepo:        repositories.NewEventRepository(),
		registrationRepo: repositories.NewRegistrationRepository(),
	}
}

// newDashboardServiceWithRepos testlerde sahte repository'lerle kurulum için.
func newDashboardServiceWithRepos(ev repositories.IEventRepository, reg repositories.IRegistrationRepository) *DashboardService {
	return &DashboardService{eventRepo: ev, registrationRepo: reg}
}

// GetEventStats tek bir etkinliğin canlı sayılarını hesaplar. Arşivlenmiş
// etkinliklerin istatistikleri de görülebilir.
func (s *DashboardService) GetEventStats(ctx context.Context, slug string) (*EventStats, error) {
	event, err := s.eventRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStatsEventNotFound
		}
		configslog.Log.Error("GetEventStats: etkinlik okunamadı", zap.String("slug", slug), zap.Error(err))
		return nil, ErrStatsFailed
	}

	registrations, err := s.registrationRepo.FindAllByEventID(ctx, event.ID)
	if err != nil {
		configslog.Log.Error("GetEventStats: kayıtlar okunamadı", zap.Uint("event_id", event.ID), zap.Error(err))
		return nil, ErrStatsFailed
	}

	stats := &EventStats{
		EventID:            event.ID,
		Slug:               event.Slug,
		Title:              event.Detail.Title,
		TotalRegistrations: len(registrations),
		StatusCounts: map[models.RegStatus]int{
			models.RegStatusPending:   0,
			models.RegStatusConfirmed: 0,
			models.RegStatusCancelled: 0,
		},
	}
	for _, reg := range registrations {
		stats.StatusCounts[reg.Status]++
		if reg.CheckIn != nil {
			stats.CheckedInCount++
		}
	}
	// Sıfır kayıt sıfır oran demektir, sıfıra bölme değil.
	if stats.TotalRegistrations > 0 {
		stats.CheckInRate = float64(stats.CheckedInCount) * 100 / float64(stats.TotalRegistrations)
	}

	stats.FieldStats = buildFieldStats(event.FormFields, registrations)
	return stats, nil
}

// buildFieldStats kategorik alanların (select/radio/checkbox) cevap
// dağılımını çıkarır. Checkbox cevaplarında seçilen her seçenek ayrı sayılır,
// bu yüzden bir alanın toplam sayımı kayıt sayısını aşabilir.
func buildFieldStats(fields []models.FormField, registrations []models.Registration) []FieldStat {
	stats := make([]FieldStat, 0)
	for _, field := range fields {
		if !field.Type.IsCategorical() {
			continue
		}

		counts := map[string]int{}
		order := make([]string, 0) // İlk görülme sırası; eşit sayıları kararlı tutar
		tally := func(option string) {
			if option == "" {
				return
			}
			if _, seen := counts[option]; !seen {
				order = append(order, option)
			}
			counts[option]++
		}

		for _, reg := range registrations {
			answer, ok := reg.Answers[field.FieldKey]
			if !ok {
				// Eski kayıtlar cevapları etiketle saklamış olabilir.
				answer, ok = reg.Answers[field.Label]
			}
			if !ok || answer.IsEmpty() {
				continue
			}
			if answer.IsList() {
				for _, option := range answer.List {
					tally(option)
				}
			} else {
				tally(answer.Text)
			}
		}

		optionCounts := make([]OptionCount, 0, len(order))
		for _, option := range order {
			optionCounts = append(optionCounts, OptionCount{Option: option, Count: counts[option]})
		}
		sort.SliceStable(optionCounts, func(i, j int) bool {
			return optionCounts[i].Count > optionCounts[j].Count
		})

		stats = append(stats, FieldStat{
			FieldKey: field.FieldKey,
			Label:    field.Label,
			Type:     field.Type,
			Counts:   optionCounts,
		})
	}
	return stats
}

// GetOverview panel ana sayfası için genel sayıları döndürür.
func (s *DashboardService) GetOverview(ctx context.Context) (*Overview, error) {
	totalEvents, err := s.eventRepo.CountAll(ctx)
	if err != nil {
		return nil, ErrStatsFailed
	}
	totalRegistrations, err := s.registrationRepo.CountAll(ctx)
	if err != nil {
		return nil, ErrStatsFailed
	}
	return &Overview{TotalEvents: totalEvents, TotalRegistrations: totalRegistrations}, nil
}

// Arayüz uyumluluğu kontrolü
var _ IDashboardService = (*DashboardService)(nil)
