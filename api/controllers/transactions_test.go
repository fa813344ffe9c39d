package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/gajeshbhat/Verkada-API-Integration/internal/transactions"
	pkgerrors "github.com/gajeshbhat/Verkada-API-Integration/pkg/errors"
)

type stubTransactionService struct {
	all     []transactions.TransactionDTO
	byStore map[int64][]transactions.TransactionDTO
	sales   map[int64]*transactions.SalesSummaryDTO
	stores  []transactions.StoreDTO
}

func (s stubTransactionService) ListTransactions(ctx context.Context) ([]transactions.TransactionDTO, error) {
	return s.all, nil
}

func (s stubTransactionService) ListStoreTransactions(ctx context.Context, storeID int64) ([]transactions.TransactionDTO, error) {
	result, ok := s.byStore[storeID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}
	return result, nil
}

func (s stubTransactionService) StoreSales(ctx context.Context, storeID int64) (*transactions.SalesSummaryDTO, error) {
	summary, ok := s.sales[storeID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}
	return summary, nil
}

func (s stubTransactionService) ListStores(ctx context.Context) ([]transactions.StoreDTO, error) {
	return s.stores, nil
}

func routeRequest(handler http.HandlerFunc, pattern, target string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get(pattern, handler)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestListTransactions(t *testing.T) {
	svc := stubTransactionService{
		all: []transactions.TransactionDTO{
			{TransactionID: 42, TransactionNumber: "TXN-42", POSID: 9},
		},
	}
	rec := routeRequest(ListTransactions(svc, nil), "/transactions", "/transactions")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data []transactions.TransactionDTO `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].TransactionID != 42 {
		t.Errorf("unexpected payload %+v", envelope.Data)
	}
}

func TestStoreSalesSuccess(t *testing.T) {
	svc := stubTransactionService{
		sales: map[int64]*transactions.SalesSummaryDTO{
			5: {StoreID: 5, SalesTotal: decimal.RequireFromString("142.49")},
		},
	}
	rec := routeRequest(StoreSales(svc, nil), "/stores/{storeID}/sales", "/stores/5/sales")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data transactions.SalesSummaryDTO `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.StoreID != 5 {
		t.Errorf("unexpected payload %+v", envelope.Data)
	}
}

func TestStoreTransactionsUnknownStore(t *testing.T) {
	rec := routeRequest(StoreTransactions(stubTransactionService{}, nil), "/stores/{storeID}/transactions", "/stores/404/transactions")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestStoreTransactionsInvalidPathID(t *testing.T) {
	rec := routeRequest(StoreTransactions(stubTransactionService{}, nil), "/stores/{storeID}/transactions", "/stores/abc/transactions")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
