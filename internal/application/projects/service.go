package projects

import (
	"context"
	"errors"
	"time"

	"github.com/ravipaliwal885078/Benchcraft/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrProjectNotFound = errors.New("project not found")

// Service owns project metadata. Projects are read-mostly: the allocation
// ledger only needs them for references and rate-domain scoping.
type Service struct {
	DB *gorm.DB
}

type CreateInput struct {
	ClientName  string
	ProjectName string
	DomainID    *uuid.UUID
	StartDate   *time.Time
	EndDate     *time.Time
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Project, error) {
	proj := domain.Project{
		ClientName:  in.ClientName,
		ProjectName: in.ProjectName,
		DomainID:    in.DomainID,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	}
	if err := s.DB.WithContext(ctx).Create(&proj).Error; err != nil {
		return nil, err
	}
	return &proj, nil
}

func (s *Service) Get(ctx context.Context, projectID uuid.UUID) (*domain.Project, error) {
	var proj domain.Project
	if err := s.DB.WithContext(ctx).Where("project_id = ?", projectID).First(&proj).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &proj, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	err := s.DB.WithContext(ctx).Order("project_name").Find(&projects).Error
	return projects, err
}
