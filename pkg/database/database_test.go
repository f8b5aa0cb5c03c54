package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type widget struct {
	ID   uint
	Name string `gorm:"uniqueIndex"`
}

func TestOpenSQLite(t *testing.T) {
	db, err := Open(Options{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "test.db")}, &widget{})
	require.NoError(t, err)

	require.NoError(t, db.Create(&widget{Name: "a"}).Error)
	err = db.Create(&widget{Name: "a"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestDialectorFor(t *testing.T) {
	d, err := dialectorFor(Options{Host: "db", Port: 3306, User: "u", Password: "p", Name: "qr"})
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())

	d, err = dialectorFor(Options{Driver: "postgres", DSN: "postgres://u:p@db/qr"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	_, err = dialectorFor(Options{Driver: "oracle"})
	assert.Error(t, err)
}
