package repository

import (
	"gorm.io/gorm"

	"github.com/plushify/plushify/app/models"
)

// generationRepository implements the GenerationRepository interface
type generationRepository struct {
	db *gorm.DB
}

// NewGenerationRepository creates a new generation repository instance
func NewGenerationRepository(db *gorm.DB) GenerationRepository {
	return &generationRepository{db: db}
}

// Create persists a completed generation record
func (r *generationRepository) Create(gen *models.Generation) error {
	return r.db.Create(gen).Error
}

// GetByUUIDAndUser retrieves a generation by UUID scoped to its owner.
// Records of other users are indistinguishable from missing ones.
func (r *generationRepository) GetByUUIDAndUser(uuid string, userID uint) (*models.Generation, error) {
	var gen models.Generation
	err := r.db.Where("uuid = ? AND user_id = ?", uuid, userID).First(&gen).Error
	if err != nil {
		return nil, err
	}
	return &gen, nil
}

// ListByUserID retrieves a user's generations newest first, paginated
func (r *generationRepository) ListByUserID(userID uint, offset, limit int) ([]models.Generation, error) {
	var gens []models.Generation
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&gens).Error
	return gens, err
}

// CountByUserID returns how many generations a user owns
func (r *generationRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Generation{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Delete removes a generation record by ID
func (r *generationRepository) Delete(id uint) error {
	return r.db.Delete(&models.Generation{}, id).Error
}
