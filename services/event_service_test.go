package services

import (
	"testing"

	"kayit.link/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFormFieldsSystemFieldsFirst(t *testing.T) {
	fields := buildFormFields([]FormFieldInput{
		{Label: "Şirket", Type: models.FieldTypeText},
		{FieldKey: models.SystemFieldKeyName, Label: "Ad Soyad", Type: models.FieldTypeText},
	})

	require.Len(t, fields, 3)
	assert.Equal(t, models.SystemFieldKeyName, fields[0].FieldKey)
	assert.Equal(t, "Ad Soyad", fields[0].Label, "sistem alanının etiketi tasarımcıdan güncellenebilir")
	assert.Equal(t, models.SystemFieldKeyEmail, fields[1].FieldKey)
	assert.Equal(t, "Şirket", fields[2].Label)
	assert.Equal(t, models.FieldCategoryCustom, fields[2].Category)
}

func TestBuildFormFieldsAllowOther(t *testing.T) {
	fields := buildFormFields([]FormFieldInput{
		{Label: "Kaynak", Type: models.FieldTypeSelect, Options: []string{"Twitter"}, AllowOther: true},
		{Label: "Notlar", Type: models.FieldTypeText, AllowOther: true},
	})

	require.Len(t, fields, 4)
	assert.True(t, fields[2].AllowOther, "kategorik alanda bayrak korunmalı")
	assert.False(t, fields[3].AllowOther, "serbest metin alanında anlamı yok, yutulur")
}
