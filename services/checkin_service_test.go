package services

import (
	"context"
	"sync"
	"testing"

	"kayit.link/models"
	"kayit.link/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCheckInFixture(t *testing.T) (*fakeRegistrationRepo, *fakeCheckInRepo, *models.Registration) {
	t.Helper()
	regRepo := newFakeRegistrationRepo()
	checkInRepo := newFakeCheckInRepo(regRepo)

	event := models.Event{
		Slug:      "go-conf",
		IsEnabled: true,
		Detail:    models.EventDetail{Title: "Go Conference"},
		FormFields: []models.FormField{
			{FieldKey: models.SystemFieldKeyName, Label: "ชื่อ - นามสกุล", Type: models.FieldTypeText, Category: models.FieldCategorySystem},
			{FieldKey: models.SystemFieldKeyEmail, Label: "อีเมล", Type: models.FieldTypeEmail, Category: models.FieldCategorySystem},
		},
	}
	event.ID = 1

	registration := regRepo.add(&models.Registration{
		EventID:       event.ID,
		ReferenceCode: "REF-1A2B3C4D",
		Status:        models.RegStatusPending,
		Answers: models.AnswerMap{
			models.SystemFieldKeyName:  {Text: "Ayşe Yılmaz"},
			models.SystemFieldKeyEmail: {Text: "ayse@example.com"},
		},
		Event: event,
	})
	return regRepo, checkInRepo, registration
}

func TestCheckInSuccess(t *testing.T) {
	regRepo, checkInRepo, registration := seedCheckInFixture(t)
	service := newCheckInServiceWithRepos(regRepo, checkInRepo)

	result, err := service.CheckIn(context.Background(), "ref-1a2b3c4d", 7)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, MsgCheckInSuccess, result.Message)
	require.NotNil(t, result.Attendee)
	assert.Equal(t, "Ayşe Yılmaz", result.Attendee.Name)
	assert.Equal(t, "Go Conference", result.Attendee.EventTitle)
	assert.NotNil(t, result.Attendee.CheckedInAt)

	// Durum CONFIRMED'a çekilmiş olmalı
	updated, err := regRepo.FindByID(context.Background(), registration.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RegStatusConfirmed, updated.Status)
	assert.Equal(t, 1, checkInRepo.count())
}

func TestCheckInAcceptsScannedURL(t *testing.T) {
	regRepo, checkInRepo, _ := seedCheckInFixture(t)
	service := newCheckInServiceWithRepos(regRepo, checkInRepo)

	result, err := service.CheckIn(context.Background(), "https://kayit.link/check-in/auto/REF-1A2B3C4D?utm=qr", 7)
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestCheckInAlreadyCheckedIn(t *testing.T) {
	regRepo, checkInRepo, registration := seedCheckInFixture(t)
	service := newCheckInServiceWithRepos(regRepo, checkInRepo)

	_, err := checkInRepo.CreateWithStatus(context.Background(), registration.ID, 7)
	require.NoError(t, err)

	// Önceden yüklenmiş CheckIn görünür olmalı
	regRepo.mu.Lock()
	regRepo.byID[registration.ID].CheckIn = checkInRepo.byRegistration[registration.ID]
	regRepo.mu.Unlock()

	result, err := service.CheckIn(context.Background(), "REF-1A2B3C4D", 9)
	require.NoError(t, err, "mükerrer okutma hata değil sonuçtur")
	assert.False(t, result.Success)
	assert.Equal(t, MsgAlreadyCheckedIn, result.Message)
	require.NotNil(t, result.Attendee)
	assert.NotNil(t, result.Attendee.CheckedInAt)
	assert.Equal(t, 1, checkInRepo.count())
}

func TestCheckInConcurrentLoser(t *testing.T) {
	regRepo, checkInRepo, registration := seedCheckInFixture(t)
	service := newCheckInServiceWithRepos(regRepo, checkInRepo)

	// Kayıt okunduğunda CheckIn nil görünüyor ama satır yazılmış:
	// adım 2 ile 5 arasında başka görevli kazandı senaryosu.
	_, err := checkInRepo.CreateWithStatus(context.Background(), registration.ID, 7)
	require.NoError(t, err)

	result, err := service.CheckIn(context.Background(), "REF-1A2B3C4D", 9)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, MsgConcurrentScan, result.Message)
	assert.Equal(t, 1, checkInRepo.count())
}

func TestCheckInInvalidInput(t *testing.T) {
	regRepo, checkInRepo, _ := seedCheckInFixture(t)
	service := newCheckInServiceWithRepos(regRepo, checkInRepo)

	_, err := service.CheckIn(context.Background(), "   ", 7)
	assert.ErrorIs(t, err, ErrCheckInInvalidInput)
}

func TestCheckInNotFound(t *testing.T) {
	regRepo, checkInRepo, _ := seedCheckInFixture(t)
	service := newCheckInServiceWithRepos(regRepo, checkInRepo)

	_, err := service.CheckIn(context.Background(), "REF-FFFFFFFF", 7)
	assert.ErrorIs(t, err, ErrCheckInNotFound)
}

func TestCheckInRequiresStaff(t *testing.T) {
	regRepo, checkInRepo, _ := seedCheckInFixture(t)
	service := newCheckInServiceWithRepos(regRepo, checkInRepo)

	_, err := service.CheckIn(context.Background(), "REF-1A2B3C4D", 0)
	assert.ErrorIs(t, err, ErrCheckInUnauthorized)
	assert.Equal(t, 0, checkInRepo.count())
}

// Aynı kodu aynı anda okutan N görevliden tam olarak biri başarılı olmalı,
// diğerleri mükerrer sonucu görmeli ve tek bir check-in satırı oluşmalı.
func TestCheckInConcurrentScans(t *testing.T) {
	regRepo, checkInRepo, _ := seedCheckInFixture(t)
	service := newCheckInServiceWithRepos(regRepo, checkInRepo)

	const scanners = 25
	results := make([]*CheckInResult, scanners)
	errs := make([]error, scanners)

	var wg sync.WaitGroup
	for i := 0; i < scanners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = service.CheckIn(context.Background(), "REF-1A2B3C4D", uint(i+1))
		}(i)
	}
	wg.Wait()

	successCount := 0
	for i := 0; i < scanners; i++ {
		require.NoError(t, errs[i], "yarış kaybetmek hata olarak dönmemeli")
		if results[i].Success {
			successCount++
		} else {
			assert.Contains(t, []string{MsgAlreadyCheckedIn, MsgConcurrentScan}, results[i].Message)
		}
	}
	assert.Equal(t, 1, successCount)
	assert.Equal(t, 1, checkInRepo.count())
}

func TestManualCheckInIdempotent(t *testing.T) {
	regRepo, checkInRepo, registration := seedCheckInFixture(t)
	service := newCheckInServiceWithRepos(regRepo, checkInRepo)

	require.NoError(t, service.ManualCheckIn(context.Background(), registration.ID, 3))
	require.NoError(t, service.ManualCheckIn(context.Background(), registration.ID, 3), "mevcut check-in sessizce başarı sayılır")
	assert.Equal(t, 1, checkInRepo.count())
}

func TestUndoCheckIn(t *testing.T) {
	regRepo, checkInRepo, registration := seedCheckInFixture(t)
	service := newCheckInServiceWithRepos(regRepo, checkInRepo)

	require.NoError(t, service.ManualCheckIn(context.Background(), registration.ID, 3))
	require.NoError(t, service.UndoCheckIn(context.Background(), registration.ID, 3))
	assert.Equal(t, 0, checkInRepo.count())

	err := service.UndoCheckIn(context.Background(), registration.ID, 3)
	assert.ErrorIs(t, err, ErrCheckInNotFound)
}

func TestCheckInRepoWrapsDuplicate(t *testing.T) {
	regRepo := newFakeRegistrationRepo()
	checkInRepo := newFakeCheckInRepo(regRepo)

	_, err := checkInRepo.CreateWithStatus(context.Background(), 42, 1)
	require.NoError(t, err)
	_, err = checkInRepo.CreateWithStatus(context.Background(), 42, 2)
	assert.True(t, repositories.IsDuplicateKey(err))
}
