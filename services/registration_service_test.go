package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"kayit.link/models"
	"kayit.link/pkg/refcode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRegistrationFixture(t *testing.T) (*fakeEventRepo, *fakeRegistrationRepo, *models.Event) {
	t.Helper()
	eventRepo := newFakeEventRepo()
	regRepo := newFakeRegistrationRepo()

	event := eventRepo.add(&models.Event{
		Slug:      "go-conf",
		IsEnabled: true,
		Detail:    models.EventDetail{Title: "Go Conference"},
		FormFields: []models.FormField{
			{FieldKey: models.SystemFieldKeyName, Label: "ชื่อ - นามสกุล", Type: models.FieldTypeText, Required: true, Category: models.FieldCategorySystem},
			{FieldKey: models.SystemFieldKeyEmail, Label: "อีเมล", Type: models.FieldTypeEmail, Required: true, Category: models.FieldCategorySystem},
			{FieldKey: "fk-stack", Label: "Teknolojiler", Type: models.FieldTypeCheckbox, Options: models.StringList{"React", "Node", "Go"}},
			{FieldKey: "fk-tshirt", Label: "Tişört Bedeni", Type: models.FieldTypeSelect, Options: models.StringList{"S", "M", "L"}},
		},
	})
	return eventRepo, regRepo, event
}

func registerForm() map[string][]string {
	return map[string][]string{
		"field_" + models.SystemFieldKeyName:  {"Mehmet Demir"},
		"field_" + models.SystemFieldKeyEmail: {"mehmet@example.com"},
		"field_fk-stack":                      {"React", "Go"},
		"field_fk-tshirt":                     {"M"},
	}
}

func TestRegisterSuccess(t *testing.T) {
	eventRepo, regRepo, _ := seedRegistrationFixture(t)
	service := newRegistrationServiceWithRepos(regRepo, eventRepo, nil)

	registration, err := service.Register(context.Background(), "go-conf", registerForm())
	require.NoError(t, err)

	assert.Regexp(t, refcode.Pattern, registration.ReferenceCode)
	// Herkese açık formdan gelen kayıt doğrudan onaylı sayılır.
	assert.Equal(t, models.RegStatusConfirmed, registration.Status)

	// Cevaplar "field_" öneki soyulmuş FieldKey'lerle saklanır
	assert.Equal(t, "Mehmet Demir", registration.Answers[models.SystemFieldKeyName].Text)
	assert.Equal(t, "mehmet@example.com", registration.Answers[models.SystemFieldKeyEmail].Text)
	assert.Equal(t, []string{"React", "Go"}, registration.Answers["fk-stack"].List)
	assert.Equal(t, "M", registration.Answers["fk-tshirt"].Text)
	assert.Equal(t, 1, regRepo.createCalls)
}

func TestRegisterRetriesOnDuplicateCode(t *testing.T) {
	eventRepo, regRepo, _ := seedRegistrationFixture(t)
	regRepo.createErrs = []error{duplicateErr()}
	service := newRegistrationServiceWithRepos(regRepo, eventRepo, nil)

	registration, err := service.Register(context.Background(), "go-conf", registerForm())
	require.NoError(t, err)
	assert.NotEmpty(t, registration.ReferenceCode)
	assert.Equal(t, 2, regRepo.createCalls, "çakışan ilk denemeden sonra yeni kodla tekrar denenmeli")
}

func TestRegisterGivesUpAfterThreeDuplicates(t *testing.T) {
	eventRepo, regRepo, _ := seedRegistrationFixture(t)
	regRepo.createErrs = []error{duplicateErr(), duplicateErr(), duplicateErr()}
	service := newRegistrationServiceWithRepos(regRepo, eventRepo, nil)

	_, err := service.Register(context.Background(), "go-conf", registerForm())
	assert.ErrorIs(t, err, ErrRegistrationFailed)
	assert.Equal(t, 3, regRepo.createCalls)
}

func TestRegisterAbortsOnNonDuplicateError(t *testing.T) {
	eventRepo, regRepo, _ := seedRegistrationFixture(t)
	regRepo.createErrs = []error{errors.New("connection reset")}
	service := newRegistrationServiceWithRepos(regRepo, eventRepo, nil)

	_, err := service.Register(context.Background(), "go-conf", registerForm())
	assert.ErrorIs(t, err, ErrRegistrationFailed)
	assert.Equal(t, 1, regRepo.createCalls, "çakışma dışı hatada tekrar denenmemeli")
}

func TestRegisterMissingRequiredField(t *testing.T) {
	eventRepo, regRepo, _ := seedRegistrationFixture(t)
	service := newRegistrationServiceWithRepos(regRepo, eventRepo, nil)

	form := registerForm()
	form["field_"+models.SystemFieldKeyEmail] = []string{"   "}

	_, err := service.Register(context.Background(), "go-conf", form)
	assert.ErrorIs(t, err, ErrRegMissingRequired)
	assert.Equal(t, 0, regRepo.createCalls)
}

func TestRegisterAllowOtherAnswers(t *testing.T) {
	eventRepo := newFakeEventRepo()
	regRepo := newFakeRegistrationRepo()
	eventRepo.add(&models.Event{
		Slug:      "go-meetup",
		IsEnabled: true,
		Detail:    models.EventDetail{Title: "Go Meetup"},
		FormFields: []models.FormField{
			{FieldKey: "fk-source", Label: "Nereden Duydunuz?", Type: models.FieldTypeSelect, Options: models.StringList{"Twitter", "Arkadaş"}, AllowOther: true},
			{FieldKey: "fk-topics", Label: "İlgi Alanları", Type: models.FieldTypeCheckbox, Options: models.StringList{"Web", "Mobil"}, AllowOther: true},
		},
	})
	service := newRegistrationServiceWithRepos(regRepo, eventRepo, nil)

	form := map[string][]string{
		"field_fk-source":       {"__other__"},
		"field_fk-source_other": {"  Podcast "},
		"field_fk-topics":       {"Web", "__other__"},
		"field_fk-topics_other": {"Gömülü Sistemler"},
	}
	registration, err := service.Register(context.Background(), "go-meetup", form)
	require.NoError(t, err)

	// Select'te işaretçi değer serbest metinle değiştirilir
	assert.Equal(t, "Podcast", registration.Answers["fk-source"].Text)
	// Checkbox'ta işaretçi atılır, serbest metin listeye eklenir
	assert.Equal(t, []string{"Web", "Gömülü Sistemler"}, registration.Answers["fk-topics"].List)
}

func TestRegisterArchivedEvent(t *testing.T) {
	eventRepo, regRepo, event := seedRegistrationFixture(t)
	event.IsEnabled = false
	require.NoError(t, eventRepo.Update(context.Background(), event))
	service := newRegistrationServiceWithRepos(regRepo, eventRepo, nil)

	_, err := service.Register(context.Background(), "go-conf", registerForm())
	assert.ErrorIs(t, err, ErrRegEventNotFound)
}

func TestUpdateRegistrationStatus(t *testing.T) {
	eventRepo, regRepo, _ := seedRegistrationFixture(t)
	service := newRegistrationServiceWithRepos(regRepo, eventRepo, nil)

	registration, err := service.Register(context.Background(), "go-conf", registerForm())
	require.NoError(t, err)

	err = service.UpdateRegistration(context.Background(), registration.ID, models.RegStatusCancelled, nil, 1)
	require.NoError(t, err)

	updated, err := regRepo.FindByID(context.Background(), registration.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RegStatusCancelled, updated.Status)
	// Answers parametresi nil olduğunda mevcut cevaplar korunur
	assert.Equal(t, "Mehmet Demir", updated.Answers[models.SystemFieldKeyName].Text)

	err = service.UpdateRegistration(context.Background(), registration.ID, models.RegStatus("BOGUS"), nil, 1)
	assert.ErrorIs(t, err, ErrRegInvalidStatus)
}

func TestExportCSVAllEvents(t *testing.T) {
	eventRepo, regRepo, event := seedRegistrationFixture(t)
	service := newRegistrationServiceWithRepos(regRepo, eventRepo, nil)

	regRepo.add(&models.Registration{
		EventID:       event.ID,
		ReferenceCode: "REF-00000001",
		Status:        models.RegStatusPending,
		Answers: models.AnswerMap{
			models.SystemFieldKeyName:  {Text: "Zeynep Kaya"},
			models.SystemFieldKeyEmail: {Text: "zeynep@example.com"},
		},
		Event: *event,
	})

	data, filename, err := service.ExportCSV(context.Background(), 0, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "registrations-"))
	assert.True(t, strings.HasSuffix(filename, ".csv"))

	csvText := string(data)
	assert.Contains(t, csvText, "Reference Code")
	assert.Contains(t, csvText, "REF-00000001")
	assert.Contains(t, csvText, "Zeynep Kaya")
}

func TestExportCSVSingleEventUsesFieldColumns(t *testing.T) {
	eventRepo, regRepo, event := seedRegistrationFixture(t)
	service := newRegistrationServiceWithRepos(regRepo, eventRepo, nil)

	regRepo.add(&models.Registration{
		EventID:       event.ID,
		ReferenceCode: "REF-00000002",
		Status:        models.RegStatusPending,
		Answers: models.AnswerMap{
			models.SystemFieldKeyName: {Text: "Ali Veli"},
			"fk-stack":                {List: []string{"React", "Go"}},
		},
		Event: *event,
	})

	data, _, err := service.ExportCSV(context.Background(), event.ID, "")
	require.NoError(t, err)

	csvText := string(data)
	assert.Contains(t, csvText, "Teknolojiler")
	assert.Contains(t, csvText, `"React, Go"`)
}

func TestExportCSVSingleEventLabelKeyedAnswers(t *testing.T) {
	eventRepo, regRepo, event := seedRegistrationFixture(t)
	service := newRegistrationServiceWithRepos(regRepo, eventRepo, nil)

	// Eski kayıt: cevaplar FieldKey yerine alan etiketiyle saklanmış
	regRepo.add(&models.Registration{
		EventID:       event.ID,
		ReferenceCode: "REF-00000003",
		Status:        models.RegStatusConfirmed,
		Answers: models.AnswerMap{
			"Tişört Bedeni": {Text: "L"},
		},
		Event: *event,
	})

	data, _, err := service.ExportCSV(context.Background(), event.ID, "")
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	sizeCol := -1
	for i, col := range records[0] {
		if col == "Tişört Bedeni" {
			sizeCol = i
		}
	}
	require.NotEqual(t, -1, sizeCol)
	assert.Equal(t, "L", records[1][sizeCol])
}

func duplicateErr() error {
	return errors.New("duplicate key value violates unique constraint \"idx_registrations_reference_code\"")
}
