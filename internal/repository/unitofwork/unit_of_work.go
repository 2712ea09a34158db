package unitofwork

import (
	"context"

	"ai-casefile-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	CaseRepository() contract.CaseRepository
	FindingRepository() contract.FindingRepository
}
