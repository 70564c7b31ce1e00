package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ravipaliwal885078/Benchcraft/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrRateCardNotFound = errors.New("rate card not found")
	ErrInvalidRate      = errors.New("hourly rate must be positive")
	ErrInvalidWindow    = errors.New("expiry date precedes effective date")
)

// ResolvedRate is the outcome of a rate lookup. A missing rate is not an
// error; Source is NONE and downstream financials degrade to zero revenue.
type ResolvedRate struct {
	Rate       float64           `json:"rate"`
	Source     domain.RateSource `json:"source"`
	RateCardID *uuid.UUID        `json:"rate_card_id,omitempty"`
}

// Service manages rate cards and resolves the applicable hourly rate for an
// employee. Cache is optional; when set, card lookups are cached per
// employee/domain/day and invalidated on rate card writes.
type Service struct {
	DB       *gorm.DB
	Cache    *redis.Client
	CacheTTL time.Duration
}

// CreateInput creates a rate card. A nil DomainID makes a BASE card.
type CreateInput struct {
	EmployeeID    uuid.UUID
	DomainID      *uuid.UUID
	HourlyRate    float64
	EffectiveDate time.Time
	ExpiryDate    *time.Time
}

// Create validates and persists a rate card. The rate type follows from the
// domain scope.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.RateCard, error) {
	if in.HourlyRate <= 0 {
		return nil, ErrInvalidRate
	}
	if in.ExpiryDate != nil && in.ExpiryDate.Before(in.EffectiveDate) {
		return nil, ErrInvalidWindow
	}

	rateType := domain.RateTypeBase
	if in.DomainID != nil {
		rateType = domain.RateTypeDomainSpecific
	}

	card := domain.RateCard{
		EmployeeID:    in.EmployeeID,
		DomainID:      in.DomainID,
		HourlyRate:    in.HourlyRate,
		RateType:      rateType,
		EffectiveDate: in.EffectiveDate,
		ExpiryDate:    in.ExpiryDate,
		IsActive:      true,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var emp domain.Employee
		if err := tx.Where("employee_id = ?", in.EmployeeID).First(&emp).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmployeeNotFound
			}
			return err
		}
		return tx.Create(&card).Error
	})
	if err != nil {
		return nil, err
	}

	s.invalidateEmployee(ctx, in.EmployeeID)
	return &card, nil
}

// Deactivate retires a rate card without deleting it.
func (s *Service) Deactivate(ctx context.Context, rateCardID uuid.UUID) error {
	var card domain.RateCard
	if err := s.DB.WithContext(ctx).Where("rate_card_id = ?", rateCardID).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRateCardNotFound
		}
		return err
	}
	if err := s.DB.WithContext(ctx).Model(&card).Update("is_active", false).Error; err != nil {
		return err
	}
	s.invalidateEmployee(ctx, card.EmployeeID)
	return nil
}

// ListForEmployee returns all rate cards for an employee, newest first.
func (s *Service) ListForEmployee(ctx context.Context, employeeID uuid.UUID) ([]domain.RateCard, error) {
	var cards []domain.RateCard
	err := s.DB.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("effective_date DESC").
		Find(&cards).Error
	return cards, err
}

// Resolve returns the applicable hourly rate for an employee as of a date.
// Precedence: currently-effective domain-specific card (latest effective)
// > active BASE card > the allocation's own billing rate > none.
//
// tx lets write paths resolve inside their transaction; pass s.DB for
// standalone reads. Resolution never fails the caller: on a cache or lookup
// miss the result degrades toward Source NONE and rate 0.
func (s *Service) Resolve(ctx context.Context, tx *gorm.DB, employeeID uuid.UUID, domainID *uuid.UUID, allocationRate *float64, asOf time.Time) (ResolvedRate, error) {
	if cached, ok := s.cacheGet(ctx, employeeID, domainID, asOf); ok {
		return s.withAllocationFallback(cached, allocationRate), nil
	}

	if domainID != nil {
		card, err := s.lookupCard(tx, employeeID, domainID, domain.RateTypeDomainSpecific, asOf)
		if err != nil {
			return ResolvedRate{Source: domain.RateSourceNone}, err
		}
		if card != nil {
			resolved := ResolvedRate{Rate: card.HourlyRate, Source: domain.RateSourceDomain, RateCardID: &card.RateCardID}
			s.cacheSet(ctx, employeeID, domainID, asOf, resolved)
			return resolved, nil
		}
	}

	card, err := s.lookupCard(tx, employeeID, nil, domain.RateTypeBase, asOf)
	if err != nil {
		return ResolvedRate{Source: domain.RateSourceNone}, err
	}
	if card != nil {
		resolved := ResolvedRate{Rate: card.HourlyRate, Source: domain.RateSourceBase, RateCardID: &card.RateCardID}
		s.cacheSet(ctx, employeeID, domainID, asOf, resolved)
		return resolved, nil
	}

	return s.withAllocationFallback(ResolvedRate{Source: domain.RateSourceNone}, allocationRate), nil
}

func (s *Service) withAllocationFallback(r ResolvedRate, allocationRate *float64) ResolvedRate {
	if r.Source != domain.RateSourceNone {
		return r
	}
	if allocationRate != nil && *allocationRate > 0 {
		return ResolvedRate{Rate: *allocationRate, Source: domain.RateSourceAllocation}
	}
	return ResolvedRate{Source: domain.RateSourceNone}
}

func (s *Service) lookupCard(tx *gorm.DB, employeeID uuid.UUID, domainID *uuid.UUID, rateType domain.RateType, asOf time.Time) (*domain.RateCard, error) {
	query := tx.
		Where("employee_id = ? AND rate_type = ? AND is_active = ?", employeeID, rateType, true).
		Where("effective_date <= ?", asOf).
		Where("expiry_date IS NULL OR expiry_date >= ?", asOf)
	if domainID != nil {
		query = query.Where("domain_id = ?", *domainID)
	} else {
		query = query.Where("domain_id IS NULL")
	}

	var card domain.RateCard
	err := query.Order("effective_date DESC").First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func cacheKey(employeeID uuid.UUID, domainID *uuid.UUID, asOf time.Time) string {
	scope := "base"
	if domainID != nil {
		scope = domainID.String()
	}
	return fmt.Sprintf("rate:%s:%s:%s", employeeID, scope, asOf.Format("2006-01-02"))
}

func (s *Service) cacheGet(ctx context.Context, employeeID uuid.UUID, domainID *uuid.UUID, asOf time.Time) (ResolvedRate, bool) {
	if s.Cache == nil {
		return ResolvedRate{}, false
	}
	raw, err := s.Cache.Get(ctx, cacheKey(employeeID, domainID, asOf)).Result()
	if err != nil {
		return ResolvedRate{}, false
	}
	var resolved ResolvedRate
	if err := json.Unmarshal([]byte(raw), &resolved); err != nil {
		return ResolvedRate{}, false
	}
	return resolved, true
}

func (s *Service) cacheSet(ctx context.Context, employeeID uuid.UUID, domainID *uuid.UUID, asOf time.Time, resolved ResolvedRate) {
	if s.Cache == nil {
		return
	}
	ttl := s.CacheTTL
	if ttl == 0 {
		ttl = time.Hour
	}
	raw, err := json.Marshal(resolved)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, cacheKey(employeeID, domainID, asOf), raw, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("employee_id", employeeID.String()).Msg("rate cache set failed")
	}
}

// invalidateEmployee drops every cached resolution for the employee.
func (s *Service) invalidateEmployee(ctx context.Context, employeeID uuid.UUID) {
	if s.Cache == nil {
		return
	}
	pattern := fmt.Sprintf("rate:%s:*", employeeID)
	iter := s.Cache.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := s.Cache.Del(ctx, iter.Val()).Err(); err != nil {
			log.Warn().Err(err).Str("key", iter.Val()).Msg("rate cache invalidation failed")
		}
	}
}
