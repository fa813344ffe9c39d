package transactions

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gajeshbhat/Verkada-API-Integration/pkg/db/models"
	pkgerrors "github.com/gajeshbhat/Verkada-API-Integration/pkg/errors"
)

type transactionReader interface {
	ListAll(ctx context.Context) ([]models.Transaction, error)
	ListByStore(ctx context.Context, storeID int64) ([]models.Transaction, error)
	ItemsForTransactions(ctx context.Context, transactionIDs []int64) ([]models.TransactionItem, error)
	SalesTotal(ctx context.Context, storeID int64) (decimal.Decimal, error)
}

type storeReader interface {
	FindByID(ctx context.Context, storeID int64) (*models.Store, error)
	ListAll(ctx context.Context) ([]models.Store, error)
}

// Service exposes the read side of the ingested data.
type Service interface {
	ListTransactions(ctx context.Context) ([]TransactionDTO, error)
	ListStoreTransactions(ctx context.Context, storeID int64) ([]TransactionDTO, error)
	StoreSales(ctx context.Context, storeID int64) (*SalesSummaryDTO, error)
	ListStores(ctx context.Context) ([]StoreDTO, error)
}

type service struct {
	repo   transactionReader
	stores storeReader
}

// NewService builds a transaction read service.
func NewService(repo transactionReader, stores storeReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store repository required")
	}
	return &service{repo: repo, stores: stores}, nil
}

// ListTransactions returns every persisted transaction with its items.
func (s *service) ListTransactions(ctx context.Context) ([]TransactionDTO, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list transactions")
	}
	return s.assemble(ctx, rows)
}

// ListStoreTransactions returns the store's transactions with their items.
func (s *service) ListStoreTransactions(ctx context.Context, storeID int64) ([]TransactionDTO, error) {
	if _, err := s.stores.FindByID(ctx, storeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}

	rows, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list store transactions")
	}
	return s.assemble(ctx, rows)
}

// StoreSales reports the store's sales total across all recorded items.
func (s *service) StoreSales(ctx context.Context, storeID int64) (*SalesSummaryDTO, error) {
	if _, err := s.stores.FindByID(ctx, storeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}

	total, err := s.repo.SalesTotal(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum store sales")
	}
	return &SalesSummaryDTO{StoreID: storeID, SalesTotal: total}, nil
}

// ListStores returns every known store.
func (s *service) ListStores(ctx context.Context) ([]StoreDTO, error) {
	rows, err := s.stores.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list stores")
	}
	result := make([]StoreDTO, 0, len(rows))
	for _, row := range rows {
		result = append(result, StoreDTOFromModel(row))
	}
	return result, nil
}

func (s *service) assemble(ctx context.Context, rows []models.Transaction) ([]TransactionDTO, error) {
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.TransactionID)
	}

	items, err := s.repo.ItemsForTransactions(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load transaction items")
	}

	byTransaction := make(map[int64][]models.TransactionItem, len(rows))
	for _, item := range items {
		byTransaction[item.TransactionID] = append(byTransaction[item.TransactionID], item)
	}

	result := make([]TransactionDTO, 0, len(rows))
	for _, row := range rows {
		result = append(result, transactionDTOFromModel(row, byTransaction[row.TransactionID]))
	}
	return result, nil
}
