package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"casedocs/internal/model"
	"casedocs/internal/repository"
)

// ErrCaseFieldsRequired is returned when a case is created without its
// mandatory fields.
var ErrCaseFieldsRequired = errors.New("case_number and title are required")

// CaseService covers the minimal case operations the document pipeline
// needs: creating the rows that document case references point at, and
// reading them back.
type CaseService interface {
	Create(ctx context.Context, caseNumber, title string) (*model.Case, error)
	Get(ctx context.Context, id string) (*model.Case, error)
	List(ctx context.Context) ([]model.Case, error)
}

type caseService struct {
	repo repository.CaseRepository
}

// NewCaseService constructs a new CaseService.
func NewCaseService(repo repository.CaseRepository) CaseService {
	return &caseService{repo: repo}
}

func (s *caseService) Create(ctx context.Context, caseNumber, title string) (*model.Case, error) {
	if caseNumber == "" || title == "" {
		return nil, ErrCaseFieldsRequired
	}
	now := time.Now().UTC()
	return s.repo.Create(ctx, &model.Case{
		ID:         uuid.New().String(),
		CaseNumber: caseNumber,
		Title:      title,
		Status:     "open",
		OpenDate:   now,
		CreatedAt:  now,
	})
}

func (s *caseService) List(ctx context.Context) ([]model.Case, error) {
	return s.repo.List(ctx)
}

func (s *caseService) Get(ctx context.Context, id string) (*model.Case, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}
	return c, nil
}
