package services

import (
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/tbourn/go-quotes-backend/internal/repo"
)

// Field limits.
const (
	MaxAuthorRunes    = 100
	MaxQuotationRunes = 200
	MaxSourceBytes    = 2048
	MaxNameRunes      = 255
	maxSlugRunes      = 200
)

var (
	likesFilterRE = regexp.MustCompile(`^(gt|et|lt)(\d+)$`)
	whitespaceRE  = regexp.MustCompile(`\s+`)
	strictPolicy  = bluemonday.StrictPolicy()
)

var likesOps = map[string]repo.LikesOp{
	"gt": repo.LikesGreater,
	"et": repo.LikesEqual,
	"lt": repo.LikesLess,
}

// ParseLikesFilter parses the likes filter syntax {gt|et|lt}<int>, e.g. gt5
// for "more than 5 likes". An empty string means no filter.
func ParseLikesFilter(s string) (*repo.LikesPredicate, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil, nil
	}
	m := likesFilterRE.FindStringSubmatch(s)
	if m == nil {
		return nil, ErrInvalidLikesFilter
	}
	n, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return nil, ErrInvalidLikesFilter
	}
	return &repo.LikesPredicate{Op: likesOps[m[1]], Value: n}, nil
}

// SanitizeText strips all HTML, unescapes entities and collapses whitespace.
func SanitizeText(s string) string {
	s = html.UnescapeString(strictPolicy.Sanitize(s))
	return whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify returns a lowercase, hyphen-separated, accent-free form of s.
func Slugify(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	pendingDash := false
	n := 0
	for _, r := range strings.ToLower(folded) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingDash = b.Len() > 0
			continue
		}
		if n >= maxSlugRunes {
			break
		}
		if pendingDash {
			b.WriteByte('-')
			pendingDash = false
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// cleanRequired sanitizes a required text field and checks its length.
func cleanRequired(field, v string, maxRunes int) (string, error) {
	v = SanitizeText(v)
	if v == "" {
		return "", invalidArg("%s must not be blank", field)
	}
	if utf8.RuneCountInString(v) > maxRunes {
		return "", invalidArg("%s must be at most %d characters", field, maxRunes)
	}
	return v, nil
}

// cleanURL validates an optional http(s) URL. Empty stays empty.
func cleanURL(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", nil
	}
	if len(v) > MaxSourceBytes {
		return "", invalidArg("%s must be at most %d bytes", field, MaxSourceBytes)
	}
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", invalidArg("%s must be an http(s) URL", field)
	}
	return u.String(), nil
}
