package domain

import "time"

// Category is a user-owned grouping for fees.
type Category struct {
	ID          string
	Name        string
	Description string
	UserID      string // owner
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Fee is a priced line item recorded against a category.
type Fee struct {
	ID           string
	Name         string
	Price        float64
	Description  string
	Date         time.Time
	CategoryName string
	UserID       string // owner
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
