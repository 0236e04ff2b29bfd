package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/command"
	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/types"
	"gorm.io/gorm"
)

const (
	maxNameLength = 100
	maxQuantity   = 999999
	maxUnitLength = 20
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9\s-]+$`)

// InventoryFilter narrows and orders an inventory listing.
type InventoryFilter struct {
	NameContains string
	MinQuantity  *int
	MaxQuantity  *int
	SortBy       string // name or quantity
	SortOrder    string // asc or desc
	Page         int
	Limit        int
}

// InventoryPage is one page of inventory items.
type InventoryPage struct {
	Items      []models.InventoryItem `json:"items"`
	Pagination types.Pagination       `json:"pagination"`
}

// InventoryService manages each user's stock of food items.
type InventoryService struct {
	db    *gorm.DB
	vocab command.Vocabulary
}

// NewInventoryService creates an inventory service that groups items into
// categories using vocab.
func NewInventoryService(db *gorm.DB, vocab command.Vocabulary) *InventoryService {
	return &InventoryService{db: db, vocab: vocab}
}

// normalizeName validates an item or recipe name and returns it lower-cased.
func normalizeName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid(field, "is required")
	}
	if len(name) > maxNameLength {
		return "", invalid(field, "must be at most %d characters", maxNameLength)
	}
	if !namePattern.MatchString(name) {
		return "", invalid(field, "may only contain letters, numbers, spaces and hyphens")
	}
	return strings.ToLower(name), nil
}

func validateQuantity(q int) error {
	if q <= 0 || q > maxQuantity {
		return invalid("quantity", "must be between 1 and %d", maxQuantity)
	}
	return nil
}

func normalizeUnit(unit string) (string, error) {
	unit = strings.ToLower(strings.TrimSpace(unit))
	if len(unit) > maxUnitLength {
		return "", invalid("unit", "must be at most %d characters", maxUnitLength)
	}
	return unit, nil
}

// Add increases the stock of item by qty, creating the item if needed.
func (s *InventoryService) Add(ctx context.Context, userID uuid.UUID, item string, qty int, unit string) (*models.InventoryItem, error) {
	var out *models.InventoryItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = addItem(tx, userID, item, qty, unit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func addItem(tx *gorm.DB, userID uuid.UUID, item string, qty int, unit string) (*models.InventoryItem, error) {
	name, err := normalizeName("item", item)
	if err != nil {
		return nil, err
	}
	if err := validateQuantity(qty); err != nil {
		return nil, err
	}
	if unit, err = normalizeUnit(unit); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"quantity": gorm.Expr("quantity + ?", qty)}
	if unit != "" {
		updates["unit"] = unit
	}
	res := tx.Model(&models.InventoryItem{}).
		Where("user_id = ? AND name = ?", userID, name).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update inventory item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		row := models.InventoryItem{UserID: userID, Name: name, Quantity: qty, Unit: unit}
		if err := tx.Create(&row).Error; err != nil {
			return nil, fmt.Errorf("failed to create inventory item: %w", err)
		}
		return &row, nil
	}

	var row models.InventoryItem
	if err := tx.Where("user_id = ? AND name = ?", userID, name).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Remove decreases the stock of item by qty. An item reaching zero is
// deleted; the returned item then has Quantity 0.
func (s *InventoryService) Remove(ctx context.Context, userID uuid.UUID, item string, qty int) (*models.InventoryItem, error) {
	name, err := normalizeName("item", item)
	if err != nil {
		return nil, err
	}
	if err := validateQuantity(qty); err != nil {
		return nil, err
	}

	var row models.InventoryItem
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.InventoryItem{}).
			Where("user_id = ? AND name = ? AND quantity >= ?", userID, name, qty).
			Update("quantity", gorm.Expr("quantity - ?", qty))
		if res.Error != nil {
			return fmt.Errorf("failed to update inventory item: %w", res.Error)
		}

		if err := tx.Where("user_id = ? AND name = ?", userID, name).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrItemNotFound, name)
			}
			return err
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w. Only %d available", ErrInsufficientQuantity, row.Quantity)
		}
		if row.Quantity == 0 {
			return tx.Delete(&row).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Get returns the stock record for item.
func (s *InventoryService) Get(ctx context.Context, userID uuid.UUID, item string) (*models.InventoryItem, error) {
	name := strings.ToLower(strings.TrimSpace(item))
	var row models.InventoryItem
	if err := s.db.WithContext(ctx).Where("user_id = ? AND name = ?", userID, name).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrItemNotFound, name)
		}
		return nil, err
	}
	return &row, nil
}

// Quantity returns how much of item is in stock, zero when absent.
func (s *InventoryService) Quantity(ctx context.Context, userID uuid.UUID, item string) (int, error) {
	row, err := s.Get(ctx, userID, item)
	if errors.Is(err, ErrItemNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.Quantity, nil
}

// All returns every item held by the user ordered by name.
func (s *InventoryService) All(ctx context.Context, userID uuid.UUID) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// List returns one filtered, sorted page of the user's inventory.
func (s *InventoryService) List(ctx context.Context, userID uuid.UUID, f InventoryFilter) (*InventoryPage, error) {
	query := s.db.WithContext(ctx).Model(&models.InventoryItem{}).Where("user_id = ?", userID)
	if f.NameContains != "" {
		query = query.Where("name LIKE ?", "%"+strings.ToLower(strings.TrimSpace(f.NameContains))+"%")
	}
	if f.MinQuantity != nil {
		query = query.Where("quantity >= ?", *f.MinQuantity)
	}
	if f.MaxQuantity != nil {
		query = query.Where("quantity <= ?", *f.MaxQuantity)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	page := types.NewPagination(f.Page, f.Limit, int(total))

	column := "name"
	if f.SortBy == "quantity" {
		column = "quantity"
	}
	order := column + " ASC"
	if strings.EqualFold(f.SortOrder, "desc") {
		order = column + " DESC"
	}

	items := []models.InventoryItem{}
	if err := query.Order(order).Order("name ASC").Offset(page.Offset()).Limit(page.Limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return &InventoryPage{Items: items, Pagination: page}, nil
}

// BulkAdd adds every entry or none of them.
func (s *InventoryService) BulkAdd(ctx context.Context, userID uuid.UUID, entries []command.InventoryEntry) ([]models.InventoryItem, error) {
	if len(entries) == 0 {
		return nil, invalid("items", "at least one item is required")
	}
	out := make([]models.InventoryItem, 0, len(entries))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, e := range entries {
			row, err := addItem(tx, userID, e.Item, e.Quantity, e.Unit)
			if err != nil {
				return fmt.Errorf("item %d: %w", i+1, err)
			}
			out = append(out, *row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ClearCategory deletes every item belonging to category and returns the
// removed items.
func (s *InventoryService) ClearCategory(ctx context.Context, userID uuid.UUID, category string) ([]models.InventoryItem, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if _, ok := s.vocab.Categories[category]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}

	removed := []models.InventoryItem{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var items []models.InventoryItem
		if err := tx.Where("user_id = ?", userID).Find(&items).Error; err != nil {
			return err
		}
		var ids []uuid.UUID
		for _, it := range items {
			if s.vocab.InCategory(category, it.Name) {
				ids = append(ids, it.ID)
				removed = append(removed, it)
			}
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Where("id IN ?", ids).Delete(&models.InventoryItem{}).Error
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
