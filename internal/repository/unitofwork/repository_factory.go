package unitofwork

import "context"

// RepositoryFactory hands out fresh units of work; each request-scoped
// operation gets its own so transactions never leak across requests.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
