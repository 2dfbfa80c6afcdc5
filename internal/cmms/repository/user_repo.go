package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-cmms/internal/cmms/entity"
	"gorm.io/gorm"
)

// UserRepository 用户/技师仓库
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID 根据ID查找用户
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByIDs 批量查找用户
func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

// FindTechnicians 查询在职技师列表
func (r *UserRepository) FindTechnicians(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND is_active = true", "technician").
		Order("name ASC").
		Find(&users).Error
	return users, err
}
