package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestOwnerKindValid(t *testing.T) {
	for _, k := range OwnerKinds {
		assert.True(t, k.Valid(), "kind %q", k)
	}
	assert.False(t, OwnerKind("").Valid())
	assert.False(t, OwnerKind("comment").Valid())
}

func TestContentRowsRejectUnknownOwnerKind(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&ContentImageModel{}, &ContentAttachmentModel{}))

	err = db.Create(&ContentImageModel{UserID: "u", OwnerKind: "comment", OwnerID: "x"}).Error
	assert.ErrorContains(t, err, "unknown owner kind")

	err = db.Create(&ContentAttachmentModel{UserID: "u", OwnerID: "x", Filename: "f"}).Error
	assert.ErrorContains(t, err, "unknown owner kind")

	err = db.Create(&ContentImageModel{UserID: "u", OwnerKind: OwnerVisit, OwnerID: "x"}).Error
	assert.NoError(t, err)
}
