package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"packhouse/internal/apperror"
)

// Warehouse is a physical location stock can live in. Deactivating a
// warehouse stops new stock intake and new pick-packs; existing inventory
// stays readable and can still be shipped out.
type Warehouse struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code       string    `gorm:"uniqueIndex;not null"` // human-chosen, e.g. "BER-01"
	Name       string    `gorm:"not null"`
	Address    string
	City       string
	Country    string
	PostalCode string
	Capacity   int  `gorm:"not null;default:0"` // storage units; 0 = unbounded
	Active     bool `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Warehouse) TableName() string { return "warehouses" }

// NewWarehouse is the only valid construction path; it normalizes the code
// and rejects incomplete input.
func NewWarehouse(code, name, address, city, country, postalCode string, capacity int) (*Warehouse, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, apperror.InvalidArgument("warehouse code is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperror.InvalidArgument("warehouse name is required")
	}
	if capacity < 0 {
		return nil, apperror.InvalidArgument("warehouse capacity cannot be negative")
	}
	return &Warehouse{
		ID:         uuid.New(),
		Code:       code,
		Name:       strings.TrimSpace(name),
		Address:    address,
		City:       city,
		Country:    country,
		PostalCode: postalCode,
		Capacity:   capacity,
		Active:     true,
	}, nil
}

// Deactivate performs the soft shutdown; the row is never deleted while
// inventory references it.
func (w *Warehouse) Deactivate() { w.Active = false }

func (w *Warehouse) Activate() { w.Active = true }
