package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/placefeed/internal/model"
)

// PlaceRepository 地点目录。
type PlaceRepository interface {
	// GetOrCreate 按 (name, lat, lng) 取或建地点。
	GetOrCreate(ctx context.Context, name string, lat, lng float64) (*model.Place, error)
	GetByID(ctx context.Context, id int64) (*model.Place, error)
	// GetByIDs 批量取地点，feed 装配用。
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.Place, error)
}

type placeRepository struct{ db *gorm.DB }

func NewPlaceRepository(db *gorm.DB) PlaceRepository { return &placeRepository{db: db} }

func (r *placeRepository) GetOrCreate(ctx context.Context, name string, lat, lng float64) (*model.Place, error) {
	place := model.Place{Name: name, Latitude: lat, Longitude: lng}
	err := r.db.WithContext(ctx).
		Where("name = ? AND latitude = ? AND longitude = ?", name, lat, lng).
		Attrs(model.Place{UrlsafeID: uuid.New().String()}).
		FirstOrCreate(&place).Error
	if err != nil {
		return nil, err
	}
	return &place, nil
}

func (r *placeRepository) GetByID(ctx context.Context, id int64) (*model.Place, error) {
	var place model.Place
	if err := r.db.WithContext(ctx).First(&place, id).Error; err != nil {
		return nil, err
	}
	return &place, nil
}

func (r *placeRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.Place, error) {
	res := make(map[int64]*model.Place, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	var places []*model.Place
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&places).Error; err != nil {
		return nil, err
	}
	for _, p := range places {
		res[p.ID] = p
	}
	return res, nil
}
