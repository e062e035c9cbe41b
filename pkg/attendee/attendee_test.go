package attendee

import (
	"testing"

	"kayit.link/models"

	"github.com/stretchr/testify/assert"
)

func systemFields() []models.FormField {
	return []models.FormField{
		{FieldKey: models.SystemFieldKeyName, Label: "ชื่อ - นามสกุล", Type: models.FieldTypeText, Category: models.FieldCategorySystem},
		{FieldKey: models.SystemFieldKeyEmail, Label: "อีเมล", Type: models.FieldTypeEmail, Category: models.FieldCategorySystem},
	}
}

func TestExtractFromSystemFields(t *testing.T) {
	answers := models.AnswerMap{
		models.SystemFieldKeyName:  {Text: "Ayşe Yılmaz"},
		models.SystemFieldKeyEmail: {Text: "ayse@example.com"},
	}

	info := Extract(answers, systemFields())
	assert.Equal(t, "Ayşe Yılmaz", info.Name)
	assert.Equal(t, "ayse@example.com", info.Email)
	assert.Equal(t, NotAvail, info.Phone)
}

func TestExtractLabelKeyedAnswers(t *testing.T) {
	// Eski kayıtlar cevapları FieldKey yerine etiketle saklamış olabilir.
	answers := models.AnswerMap{
		"ชื่อ - นามสกุล": {Text: "สมชาย ใจดี"},
		"อีเมล":          {Text: "somchai@example.co.th"},
	}

	info := Extract(answers, systemFields())
	assert.Equal(t, "สมชาย ใจดี", info.Name)
	assert.Equal(t, "somchai@example.co.th", info.Email)
}

func TestExtractByFieldTypeAndLabel(t *testing.T) {
	fields := []models.FormField{
		{FieldKey: "fk-1", Label: "Full Name", Type: models.FieldTypeText},
		{FieldKey: "fk-2", Label: "Contact", Type: models.FieldTypeEmail},
		{FieldKey: "fk-3", Label: "Mobile Phone", Type: models.FieldTypePhone},
	}
	answers := models.AnswerMap{
		"fk-1": {Text: "Mehmet Demir"},
		"fk-2": {Text: "mehmet@example.com"},
		"fk-3": {Text: "+90 555 000 00 00"},
	}

	info := Extract(answers, fields)
	assert.Equal(t, "Mehmet Demir", info.Name)
	assert.Equal(t, "mehmet@example.com", info.Email)
	assert.Equal(t, "+90 555 000 00 00", info.Phone)
}

func TestExtractLegacyKeysWithoutFields(t *testing.T) {
	answers := models.AnswerMap{
		"default_name":  {Text: "Zeynep Kaya"},
		"default_email": {Text: "zeynep@example.com"},
		"default_phone": {Text: "0555 111 22 33"},
	}

	info := Extract(answers, nil)
	assert.Equal(t, "Zeynep Kaya", info.Name)
	assert.Equal(t, "zeynep@example.com", info.Email)
	assert.Equal(t, "0555 111 22 33", info.Phone)
}

func TestExtractHeuristicFallback(t *testing.T) {
	// Anahtarlar tanıdık değil; e-posta şekline ve '@' içermeyen metne düşülür.
	answers := models.AnswerMap{
		"a-something": {Text: "Ali Veli"},
		"b-contact":   {Text: "ali@example.com"},
	}

	info := Extract(answers, nil)
	assert.Equal(t, "Ali Veli", info.Name)
	assert.Equal(t, "ali@example.com", info.Email)
}

func TestExtractKeyPatternBeatsHeuristic(t *testing.T) {
	answers := models.AnswerMap{
		"attendee_name": {Text: "Fatma Şahin"},
		"aaa-first":     {Text: "başka bir metin"},
	}

	info := Extract(answers, nil)
	assert.Equal(t, "Fatma Şahin", info.Name)
}

func TestExtractEmptyAnswers(t *testing.T) {
	info := Extract(nil, nil)
	assert.Equal(t, UnknownName, info.Name)
	assert.Equal(t, NotAvail, info.Email)
	assert.Equal(t, NotAvail, info.Phone)
}

func TestExtractSkipsListAnswersInHeuristics(t *testing.T) {
	answers := models.AnswerMap{
		"a-choices": {List: []string{"Go", "React"}},
		"z-name":    {Text: "Canan Öz"},
	}

	info := Extract(answers, nil)
	assert.Equal(t, "Canan Öz", info.Name)
}

func TestExtractDeterministic(t *testing.T) {
	// İki '@' içermeyen metin cevabı; harita sırası değil anahtar sırası kazanmalı.
	answers := models.AnswerMap{
		"m-note": {Text: "not alanı"},
		"b-city": {Text: "Ankara"},
	}

	for i := 0; i < 20; i++ {
		info := Extract(answers, nil)
		assert.Equal(t, "Ankara", info.Name)
	}
}
