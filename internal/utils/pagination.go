// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

var (
	// ErrNotInteger is returned for query values that are not base-10 integers.
	ErrNotInteger = errors.New("not an integer")
	// ErrBadIDList is returned for malformed comma-separated id lists.
	ErrBadIDList = errors.New("ids must be comma-separated positive integers")
)

// AtoiStrict converts s to an int. An empty s yields def; anything that is
// not a base-10 integer yields ErrNotInteger. Surrounding spaces are not
// trimmed.
//
// Example:
//
//	n, _ := utils.AtoiStrict("42", 0) // 42
//	n, _ = utils.AtoiStrict("", 10)   // 10
//	_, err := utils.AtoiStrict("x", 5) // ErrNotInteger
func AtoiStrict(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrNotInteger
	}
	return n, nil
}

// ParseIDList parses "1,2,3" into ids. Only digits and commas are accepted;
// empty elements and zero are rejected. Order is preserved, duplicates kept.
func ParseIDList(s string) ([]uint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrBadIDList
	}
	parts := strings.Split(s, ",")
	out := make([]uint, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			return nil, ErrBadIDList
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return nil, ErrBadIDList
			}
		}
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil || n == 0 {
			return nil, ErrBadIDList
		}
		out = append(out, uint(n))
	}
	return out, nil
}

// PageLink returns the path and query of u with the page parameter set to
// page, e.g. "/v1/quotes?page=2&per_page=5".
func PageLink(u *url.URL, page int) string {
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	return u.Path + "?" + q.Encode()
}
