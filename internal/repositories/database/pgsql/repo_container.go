package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/cambix/cambix_backend/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every pgsql repository against one pool. The
// float repository is shared so window and transaction repositories compose
// float mutations into their own database transactions.
func NewRepositoryProvider(pool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	floatRepo := newPgxFloatRepository(pool)
	return &portsrepo.RepositoryProvider{
		RateRepo:        newPgxRateRepository(pool),
		FloatRepo:       floatRepo,
		WindowRepo:      newPgxWindowRepository(pool, floatRepo),
		TransactionRepo: newPgxTransactionRepository(pool, floatRepo),
		MasterRepo:      newPgxMasterDataRepository(pool),
		TxManager:       &BaseRepository{Pool: pool},
	}
}
