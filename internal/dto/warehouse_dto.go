package dto

// CreateWarehouseRequest opens a new physical location for stock.
type CreateWarehouseRequest struct {
	Code       string `json:"code" validate:"required,max=16"`
	Name       string `json:"name" validate:"required,max=120"`
	Address    string `json:"address" validate:"max=200"`
	City       string `json:"city" validate:"max=80"`
	Country    string `json:"country" validate:"max=80"`
	PostalCode string `json:"postal_code" validate:"max=16"`
	Capacity   int    `json:"capacity" validate:"min=0"`
}

// UpdateWarehouseRequest patches mutable fields; nil means "leave as is".
type UpdateWarehouseRequest struct {
	Name       *string `json:"name" validate:"omitempty,max=120"`
	Address    *string `json:"address" validate:"omitempty,max=200"`
	City       *string `json:"city" validate:"omitempty,max=80"`
	Country    *string `json:"country" validate:"omitempty,max=80"`
	PostalCode *string `json:"postal_code" validate:"omitempty,max=16"`
	Capacity   *int    `json:"capacity" validate:"omitempty,min=0"`
}

type WarehouseResponse struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Capacity   int    `json:"capacity"`
	Active     bool   `json:"active"`
	CreatedAt  string `json:"created_at"`
}

type WarehouseListResponse struct {
	Data  []WarehouseResponse `json:"data"`
	Total int64               `json:"total"`
}
