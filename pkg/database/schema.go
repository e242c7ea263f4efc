package database

import (
	"gorm.io/gorm"
)

// EnsureTable creates the table backing model if it is missing. Existing tables are left untouched.
func EnsureTable(db *gorm.DB, model any) error {
	if db.Migrator().HasTable(model) {
		return nil
	}

	return db.Migrator().CreateTable(model)
}

// EnsureColumn adds the column for field to model's table if it is missing and reports whether it did
func EnsureColumn(db *gorm.DB, model any, field string) (bool, error) {
	if db.Migrator().HasColumn(model, field) {
		return false, nil
	}

	if err := db.Migrator().AddColumn(model, field); err != nil {
		return false, err
	}

	return true, nil
}

// CountRows returns the number of rows in model's table
func CountRows(db *gorm.DB, model any) (int64, error) {
	var count int64
	err := db.Model(model).Count(&count).Error

	return count, err
}
