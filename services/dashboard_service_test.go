package services

import (
	"context"
	"testing"

	"kayit.link/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEventStatsEmptyEvent(t *testing.T) {
	eventRepo := newFakeEventRepo()
	regRepo := newFakeRegistrationRepo()
	eventRepo.add(&models.Event{
		Slug:      "empty-event",
		IsEnabled: true,
		Detail:    models.EventDetail{Title: "Empty Event"},
	})
	service := newDashboardServiceWithRepos(eventRepo, regRepo)

	stats, err := service.GetEventStats(context.Background(), "empty-event")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalRegistrations)
	assert.Equal(t, 0, stats.CheckedInCount)
	assert.Equal(t, 0.0, stats.CheckInRate, "sıfır kayıt sıfır oran demektir")
}

func TestGetEventStatsNotFound(t *testing.T) {
	service := newDashboardServiceWithRepos(newFakeEventRepo(), newFakeRegistrationRepo())

	_, err := service.GetEventStats(context.Background(), "yok-boyle-etkinlik")
	assert.ErrorIs(t, err, ErrStatsEventNotFound)
}

func TestGetEventStatsCountsAndRate(t *testing.T) {
	eventRepo := newFakeEventRepo()
	regRepo := newFakeRegistrationRepo()
	event := eventRepo.add(&models.Event{
		Slug:      "go-conf",
		IsEnabled: true,
		Detail:    models.EventDetail{Title: "Go Conference"},
		FormFields: []models.FormField{
			{FieldKey: "fk-stack", Label: "Teknolojiler", Type: models.FieldTypeCheckbox, Options: models.StringList{"React", "Node", "Go"}},
			{FieldKey: "fk-note", Label: "Not", Type: models.FieldTypeText},
		},
	})
	service := newDashboardServiceWithRepos(eventRepo, regRepo)

	first := regRepo.add(&models.Registration{
		EventID: event.ID, ReferenceCode: "REF-00000001", Status: models.RegStatusConfirmed,
		Answers: models.AnswerMap{"fk-stack": {List: []string{"React", "Node"}}},
	})
	first.CheckIn = &models.CheckIn{RegistrationID: first.ID}
	regRepo.add(&models.Registration{
		EventID: event.ID, ReferenceCode: "REF-00000002", Status: models.RegStatusPending,
		Answers: models.AnswerMap{"fk-stack": {List: []string{"React"}}, "fk-note": {Text: "serbest metin"}},
	})
	regRepo.add(&models.Registration{
		EventID: event.ID, ReferenceCode: "REF-00000003", Status: models.RegStatusCancelled,
		Answers: models.AnswerMap{},
	})

	stats, err := service.GetEventStats(context.Background(), "go-conf")
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalRegistrations)
	assert.Equal(t, 1, stats.CheckedInCount)
	assert.InDelta(t, 33.33, stats.CheckInRate, 0.01)
	assert.Equal(t, 1, stats.StatusCounts[models.RegStatusConfirmed])
	assert.Equal(t, 1, stats.StatusCounts[models.RegStatusPending])
	assert.Equal(t, 1, stats.StatusCounts[models.RegStatusCancelled])

	// Sadece kategorik alanlar istatistiğe girer
	require.Len(t, stats.FieldStats, 1)
	fieldStat := stats.FieldStats[0]
	assert.Equal(t, "Teknolojiler", fieldStat.Label)

	// Checkbox'ta seçilen her seçenek ayrı sayılır, sıralama çoktan aza
	require.Len(t, fieldStat.Counts, 2)
	assert.Equal(t, OptionCount{Option: "React", Count: 2}, fieldStat.Counts[0])
	assert.Equal(t, OptionCount{Option: "Node", Count: 1}, fieldStat.Counts[1])
}

func TestGetEventStatsLegacyLabelKeyedAnswers(t *testing.T) {
	eventRepo := newFakeEventRepo()
	regRepo := newFakeRegistrationRepo()
	event := eventRepo.add(&models.Event{
		Slug:      "legacy-event",
		IsEnabled: true,
		Detail:    models.EventDetail{Title: "Legacy"},
		FormFields: []models.FormField{
			{FieldKey: "fk-size", Label: "Beden", Type: models.FieldTypeSelect, Options: models.StringList{"S", "M"}},
		},
	})
	service := newDashboardServiceWithRepos(eventRepo, regRepo)

	// Eski kayıt cevabı FieldKey yerine etiketle saklamış
	regRepo.add(&models.Registration{
		EventID: event.ID, ReferenceCode: "REF-00000009", Status: models.RegStatusPending,
		Answers: models.AnswerMap{"Beden": {Text: "M"}},
	})

	stats, err := service.GetEventStats(context.Background(), "legacy-event")
	require.NoError(t, err)
	require.Len(t, stats.FieldStats, 1)
	require.Len(t, stats.FieldStats[0].Counts, 1)
	assert.Equal(t, OptionCount{Option: "M", Count: 1}, stats.FieldStats[0].Counts[0])
}

func TestGetOverview(t *testing.T) {
	eventRepo := newFakeEventRepo()
	regRepo := newFakeRegistrationRepo()
	eventRepo.add(&models.Event{Slug: "a", IsEnabled: true})
	eventRepo.add(&models.Event{Slug: "b", IsEnabled: false})
	regRepo.add(&models.Registration{EventID: 1, ReferenceCode: "REF-0000000A"})
	service := newDashboardServiceWithRepos(eventRepo, regRepo)

	overview, err := service.GetOverview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), overview.TotalEvents)
	assert.Equal(t, int64(1), overview.TotalRegistrations)
}
