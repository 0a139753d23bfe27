package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"keymaster/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

type propertyModel struct {
	ID               string    `gorm:"column:id;primaryKey"`
	Name             string    `gorm:"column:name"`
	Category         string    `gorm:"column:category"`
	Address          string    `gorm:"column:address"`
	ImageURL         string    `gorm:"column:image_url"`
	ImageHint        *string   `gorm:"column:image_hint"`
	GoogleMapsURL    string    `gorm:"column:google_maps_url"`
	Instructions     string    `gorm:"column:instructions;type:text"`
	ContractTemplate string    `gorm:"column:contract_template;type:text"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (propertyModel) TableName() string { return "properties" }

func toDomainProperty(m propertyModel) (*domain.Property, error) {
	var instr domain.CheckinInstructions
	if m.Instructions != "" {
		if err := json.Unmarshal([]byte(m.Instructions), &instr); err != nil {
			return nil, err
		}
	}

	var hint string
	if m.ImageHint != nil {
		hint = *m.ImageHint
	}

	return &domain.Property{
		ID:                  m.ID,
		Name:                m.Name,
		Category:            domain.PropertyCategory(m.Category),
		Address:             m.Address,
		ImageURL:            m.ImageURL,
		ImageHint:           hint,
		GoogleMapsURL:       m.GoogleMapsURL,
		CheckinInstructions: instr,
		ContractTemplate:    m.ContractTemplate,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}, nil
}

func toPropertyModel(p *domain.Property) (propertyModel, error) {
	raw, err := json.Marshal(p.CheckinInstructions)
	if err != nil {
		return propertyModel{}, err
	}

	var hint *string
	if p.ImageHint != "" {
		v := p.ImageHint
		hint = &v
	}

	return propertyModel{
		ID:               p.ID,
		Name:             p.Name,
		Category:         string(p.Category),
		Address:          p.Address,
		ImageURL:         p.ImageURL,
		ImageHint:        hint,
		GoogleMapsURL:    p.GoogleMapsURL,
		Instructions:     string(raw),
		ContractTemplate: p.ContractTemplate,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}, nil
}

// Create stores a new property. A missing ID is derived from the name as a
// slug, falling back to a UUID when the slug collides or comes out empty.
func (r *PropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	if p.ID == "" {
		p.ID = slugify(p.Name)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	var taken int64
	if tx := r.db.WithContext(ctx).Model(&propertyModel{}).
		Where("id = ?", p.ID).Count(&taken); tx.Error != nil {
		return tx.Error
	}
	if taken > 0 {
		p.ID = uuid.NewString()
	}

	m, err := toPropertyModel(p)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Create(&m).Error
}

// GetByID returns (nil, nil) when the property does not exist; callers
// handle absence explicitly.
func (r *PropertyRepository) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	var m propertyModel
	tx := r.db.WithContext(ctx).Where("id = ?", id).First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return toDomainProperty(m)
}

func (r *PropertyRepository) GetAll(ctx context.Context) ([]domain.Property, error) {
	var models []propertyModel
	tx := r.db.WithContext(ctx).Order("name ASC").Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}

	properties := make([]domain.Property, 0, len(models))
	for _, m := range models {
		p, err := toDomainProperty(m)
		if err != nil {
			return nil, err
		}
		properties = append(properties, *p)
	}
	return properties, nil
}

func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
