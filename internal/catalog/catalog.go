// Package catalog looks up the items agents can buy.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/cyphera/cyphera-agentpay/internal/constants"
	"github.com/cyphera/cyphera-agentpay/internal/constraints"
	"github.com/cyphera/cyphera-agentpay/internal/db"
	"github.com/cyphera/cyphera-agentpay/internal/helpers"
	"github.com/cyphera/cyphera-agentpay/internal/payerrors"
	"github.com/jackc/pgx/v5"
)

// Item is a purchasable item. Price is in minor units of Currency.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Currency string `json:"currency"`
	Category string `json:"category"`
	Brand    string `json:"brand,omitempty"`
}

// Purchase projects the item onto the fields spending rules look at.
func (i Item) Purchase() constraints.Purchase {
	return constraints.Purchase{Price: i.Price, Category: i.Category, Brand: i.Brand}
}

// Validate checks an item definition before it is stored.
func (i Item) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return errors.New("item id is required")
	}
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("item %s: name is required", i.ID)
	}
	if i.Price < 0 {
		return fmt.Errorf("item %s: price must not be negative", i.ID)
	}
	if strings.TrimSpace(i.Category) == "" {
		return fmt.Errorf("item %s: category is required", i.ID)
	}
	return nil
}

// Store provides item lookup.
type Store interface {
	GetItem(ctx context.Context, id string) (*Item, error)
	ListItems(ctx context.Context) ([]Item, error)
	PutItem(ctx context.Context, item Item) error
}

// PostgresStore reads items from the items table.
type PostgresStore struct {
	queries db.Querier
}

// NewPostgresStore creates a catalog backed by Postgres
func NewPostgresStore(queries db.Querier) *PostgresStore {
	return &PostgresStore{queries: queries}
}

// GetItem returns the item or an item_not_found rejection.
func (s *PostgresStore) GetItem(ctx context.Context, id string) (*Item, error) {
	row, err := s.queries.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payerrors.Newf(payerrors.CodeItemNotFound, "item %q not found", id)
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	item := fromDB(row)
	return &item, nil
}

func (s *PostgresStore) ListItems(ctx context.Context) ([]Item, error) {
	rows, err := s.queries.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, fromDB(row))
	}
	return items, nil
}

func (s *PostgresStore) PutItem(ctx context.Context, item Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if item.Currency == "" {
		item.Currency = constants.USDCurrency
	}
	_, err := s.queries.UpsertItem(ctx, db.UpsertItemParams{
		ID:         item.ID,
		Name:       item.Name,
		PriceCents: item.Price,
		Currency:   item.Currency,
		Category:   item.Category,
		Brand:      helpers.StringToNullableText(item.Brand),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert item %s: %w", item.ID, err)
	}
	return nil
}

func fromDB(row db.Item) Item {
	return Item{
		ID:       row.ID,
		Name:     row.Name,
		Price:    row.PriceCents,
		Currency: row.Currency,
		Category: row.Category,
		Brand:    row.Brand.String,
	}
}

// MemoryStore is an in-process catalog for local runs and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Item
}

// NewMemoryStore creates a catalog holding items
func NewMemoryStore(items ...Item) *MemoryStore {
	s := &MemoryStore{items: make(map[string]Item, len(items))}
	for _, item := range items {
		if item.Currency == "" {
			item.Currency = constants.USDCurrency
		}
		s.items[item.ID] = item
	}
	return s
}

func (s *MemoryStore) GetItem(_ context.Context, id string) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, payerrors.Newf(payerrors.CodeItemNotFound, "item %q not found", id)
	}
	return &item, nil
}

func (s *MemoryStore) ListItems(_ context.Context) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *MemoryStore) PutItem(_ context.Context, item Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if item.Currency == "" {
		item.Currency = constants.USDCurrency
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
	return nil
}

// LoadSeedFile reads a JSON array of items.
func LoadSeedFile(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog seed: %w", err)
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse catalog seed: %w", err)
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// Seed stores items, replacing existing definitions with the same id.
func Seed(ctx context.Context, store Store, items []Item) error {
	for _, item := range items {
		if err := store.PutItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}
