package domain

import "math"

// QuoteView is the read-side shape of a quote for one caller. IsLiked is
// computed per request and never persisted.
type QuoteView struct {
	Quote   Quote
	IsLiked bool
}

// UserProfile is a user together with derived counters.
type UserProfile struct {
	User           User
	TotalLikes     int64
	TotalSubmitted int64
}

// Page is one page of a larger result set. Page is 1-indexed.
type Page[T any] struct {
	Items   []T
	Page    int
	PerPage int
	Total   int64
}

// HasNext reports whether a page exists after this one.
func (p Page[T]) HasNext() bool {
	per := int64(p.PerPage)
	if per < 1 || per >= p.Total {
		return false
	}
	return int64(p.Offset()) < p.Total-per
}

// HasPrev reports whether a page exists before this one.
func (p Page[T]) HasPrev() bool {
	return p.Page > 1
}

// Offset is the number of rows skipped before this page. It saturates at
// math.MaxInt instead of wrapping for pages far past the end.
func (p Page[T]) Offset() int {
	if p.Page < 1 || p.PerPage < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PerPage {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PerPage
}
