package database

import (
	"errors"

	"shopcart-backend/models"

	"gorm.io/gorm"
)

// CartStore persists cart blobs through gorm. Replace runs a delete followed
// by an insert, not an atomic swap; concurrent stores for the same key must
// be serialized by the caller.
type CartStore struct {
	db    *gorm.DB
	table string
}

func NewCartStore(db *gorm.DB, table string) *CartStore {
	if table == "" {
		table = "stored_carts"
	}
	return &CartStore{db: db, table: table}
}

func (s *CartStore) rows() *gorm.DB {
	return s.db.Table(s.table)
}

func (s *CartStore) Exists(identifier, instance string) (bool, error) {
	var count int64
	err := s.rows().
		Where("identifier = ? AND instance = ?", identifier, instance).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *CartStore) Load(identifier, instance string) ([]byte, error) {
	var row models.StoredCart
	err := s.rows().
		Where("identifier = ? AND instance = ?", identifier, instance).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return []byte(row.Content), nil
}

func (s *CartStore) Replace(identifier, instance string, content []byte) error {
	err := s.rows().
		Where("identifier = ? AND instance = ?", identifier, instance).
		Delete(&models.StoredCart{}).Error
	if err != nil {
		return err
	}

	row := models.StoredCart{
		Identifier: identifier,
		Instance:   instance,
		Content:    string(content),
	}
	return s.rows().Create(&row).Error
}

func (s *CartStore) Delete(identifier string) error {
	return s.rows().Where("identifier = ?", identifier).Delete(&models.StoredCart{}).Error
}

// ModelStore resolves cart line associations against the database. Only the
// product kind is known.
type ModelStore struct {
	db *gorm.DB
}

func NewModelStore(db *gorm.DB) *ModelStore {
	return &ModelStore{db: db}
}

func (s *ModelStore) Resolves(kind string) bool {
	return kind == "product"
}

func (s *ModelStore) FindModel(kind, id string) (any, error) {
	if kind != "product" {
		return nil, errors.New("unknown model kind " + kind)
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}
