package models

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// SortField enumerates the columns a listing may be ordered by.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortViews     SortField = "views"
	SortDuration  SortField = "duration"
	SortTitle     SortField = "title"
	SortUpdatedAt SortField = "updatedAt"
)

// PageRequest is a validated skip/take window over a sorted listing.
type PageRequest struct {
	Page      int
	Limit     int
	SortBy    SortField
	Ascending bool
}

// Offset is the number of rows skipped before the window starts. It saturates
// at math.MaxInt, so a page far past the end yields an empty window.
func (p PageRequest) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// VideoFilter restricts the public video listing.
type VideoFilter struct {
	OwnerID string
	Query   string
}
