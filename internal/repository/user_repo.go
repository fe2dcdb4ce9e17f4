package repository

import (
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *models.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByIDs returns active users matching the ids, optionally restricted to
// one branch; missing and out-of-branch ids are silently dropped so one bad
// id does not fail a whole send.
func (r *UserRepository) GetByIDs(ids []uint, branchID *uint) ([]models.User, error) {
	var list []models.User
	if len(ids) == 0 {
		return list, nil
	}
	q := r.db.Where("id IN ? AND is_active = ?", ids, true)
	if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}
	err := q.Find(&list).Error
	return list, err
}

// ListByRoles returns active users holding any of the roles, optionally
// restricted to one branch.
func (r *UserRepository) ListByRoles(roles []string, branchID *uint) ([]models.User, error) {
	var list []models.User
	q := r.db.Where("is_active = ?", true)
	if len(roles) > 0 {
		q = q.Where("role IN ?", roles)
	}
	if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *UserRepository) Update(u *models.User) error {
	return r.db.Save(u).Error
}
