package model

import (
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/TariqKichawele/Reflect/internal/errs"
)

// FilterKind selects which entries a listing covers.
type FilterKind int

const (
	// FilterAll lists every entry of the user.
	FilterAll FilterKind = iota
	// FilterUnorganized lists entries without a collection.
	FilterUnorganized
	// FilterByID lists entries of one collection.
	FilterByID
)

// CollectionFilter is the three-state collection predicate of a listing.
type CollectionFilter struct {
	Kind FilterKind
	ID   uuid.UUID // set for FilterByID
}

// AllEntries, UnorganizedEntries and InCollection build filters.
func AllEntries() CollectionFilter         { return CollectionFilter{Kind: FilterAll} }
func UnorganizedEntries() CollectionFilter { return CollectionFilter{Kind: FilterUnorganized} }
func InCollection(id uuid.UUID) CollectionFilter {
	return CollectionFilter{Kind: FilterByID, ID: id}
}

// String renders the filter in its wire form ("" / "unorganized" / uuid).
func (f CollectionFilter) String() string {
	switch f.Kind {
	case FilterUnorganized:
		return Unorganized
	case FilterByID:
		return f.ID.String()
	default:
		return ""
	}
}

// ParseCollectionFilter parses the wire form of a collection filter.
func ParseCollectionFilter(s string) (CollectionFilter, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return AllEntries(), nil
	case Unorganized:
		return UnorganizedEntries(), nil
	}
	id, err := uuid.FromString(s)
	if err != nil {
		return CollectionFilter{}, errs.Invalid("bad collection id %q", s)
	}
	return InCollection(id), nil
}

// Order is the creation-time sort direction.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ParseOrder parses "asc"/"desc"; empty means desc.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc":
		return OrderDesc, nil
	case "asc":
		return OrderAsc, nil
	default:
		return "", errs.Invalid("bad order %q", s)
	}
}

// EntryFilter parameterizes an entry listing.
type EntryFilter struct {
	Collection CollectionFilter
	Order      Order
}
