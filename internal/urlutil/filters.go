package urlutil

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/tammuoichanhoa/vnnews-crawler/internal/sites"
)

// Filters is the compiled link classifier for one site. Acceptance requires
// passing every configured filter simultaneously; an empty allow-list means
// "allow all" while deny-lists always apply.
type Filters struct {
	deniedExactPaths map[string]struct{}

	categoryAllowPrefixes []string
	categoryDenyPrefixes  []string
	categoryDenyRegexes   []*regexp.Regexp
	categoryHostSuffixes  []string

	articleAllowPrefixes      []string
	articleDenyPrefixes       []string
	articleDenyRegexes        []*regexp.Regexp
	articleAllowedSuffixes    []string
	articleAllowedPathRegexes []*regexp.Regexp
	articleHostSuffixes       []string
}

// NewFilters compiles the profile's filter lists. Regex compilation errors
// surface here rather than mid-crawl.
func NewFilters(profile *sites.Profile) (*Filters, error) {
	f := &Filters{
		deniedExactPaths:      make(map[string]struct{}, len(profile.DeniedExactPaths)),
		categoryAllowPrefixes: profile.CategoryAllowPrefixes,
		categoryDenyPrefixes:  profile.CategoryDenyPrefixes,
		categoryHostSuffixes:  profile.CategoryHostSuffixes,
		articleAllowPrefixes:  profile.ArticleAllowPrefixes,
		articleDenyPrefixes:   profile.ArticleDenyPrefixes,
		articleHostSuffixes:   profile.ArticleHostSuffixes,
	}
	for _, path := range profile.DeniedExactPaths {
		f.deniedExactPaths[path] = struct{}{}
	}
	for _, suffix := range profile.ArticleAllowedSuffixes {
		f.articleAllowedSuffixes = append(f.articleAllowedSuffixes, strings.ToLower(suffix))
	}

	var err error
	if f.categoryDenyRegexes, err = compileAll(profile.CategoryDenyRegexes); err != nil {
		return nil, err
	}
	if f.articleDenyRegexes, err = compileAll(profile.ArticleDenyRegexes); err != nil {
		return nil, err
	}
	if f.articleAllowedPathRegexes, err = compileAll(profile.ArticleAllowedPathRegexes); err != nil {
		return nil, err
	}
	return f, nil
}

// compileAll compiles a pattern list, failing on the first bad pattern.
func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile filter regex %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// AcceptCategory reports whether a normalized category URL passes the
// category filter set.
func (f *Filters) AcceptCategory(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	path := u.Path

	if _, denied := f.deniedExactPaths[path]; denied {
		return false
	}
	if !HostMatchesSuffix(u.Hostname(), f.categoryHostSuffixes) {
		return false
	}
	if !passesPrefix(path, f.categoryAllowPrefixes, f.categoryDenyPrefixes) {
		return false
	}
	return !matchesAny(path, f.categoryDenyRegexes)
}

// AcceptArticle reports whether a normalized article URL passes the full
// article filter set. Every discovered URL goes through this, no matter
// which discovery tier produced it.
func (f *Filters) AcceptArticle(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	path := u.Path

	if _, denied := f.deniedExactPaths[path]; denied {
		return false
	}
	if !HostMatchesSuffix(u.Hostname(), f.articleHostSuffixes) {
		return false
	}
	if !passesPrefix(path, f.articleAllowPrefixes, f.articleDenyPrefixes) {
		return false
	}
	if matchesAny(path, f.articleDenyRegexes) {
		return false
	}
	if !suffixAllowed(path, f.articleAllowedSuffixes) {
		return false
	}
	if len(f.articleAllowedPathRegexes) > 0 && !matchesAny(path, f.articleAllowedPathRegexes) {
		return false
	}
	return true
}

// passesPrefix applies an allow-prefix list (empty means allow all) and a
// deny-prefix list to a path.
func passesPrefix(path string, allow, deny []string) bool {
	if len(allow) > 0 {
		allowed := false
		for _, prefix := range allow {
			if strings.HasPrefix(path, prefix) {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}
	for _, prefix := range deny {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// suffixAllowed applies the literal, case-insensitive article suffix
// allow-list. Empty list allows all suffixes.
func suffixAllowed(path string, suffixes []string) bool {
	if len(suffixes) == 0 {
		return true
	}
	lower := strings.ToLower(path)
	for _, suffix := range suffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// matchesAny reports whether any compiled regex matches the path.
func matchesAny(path string, regexes []*regexp.Regexp) bool {
	for _, re := range regexes {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}
