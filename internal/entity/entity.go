// Package entity normalizes noisy brand/company names into stable keys used
// to merge near-duplicate mentions into one logical entity.
package entity

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

var (
	trailingIntRe = regexp.MustCompile(`\s+\d+$`)
	nonAlnumRe    = regexp.MustCompile(`[^a-z0-9]+`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

// dropTokens are boilerplate tokens that show up in page titles and create
// duplicate entity rows, including legal-entity suffixes.
var dropTokens = map[string]struct{}{
	"the": {}, "official": {}, "site": {}, "store": {}, "shop": {},
	"online": {}, "brand": {}, "inc": {}, "llc": {}, "ltd": {}, "co": {},
	"company": {}, "corp": {}, "corporation": {},
}

// legalSuffixes is the broader suffix set used by discovery-path company
// name normalization.
var legalSuffixes = map[string]struct{}{
	"inc": {}, "llc": {}, "ltd": {}, "co": {}, "company": {}, "corp": {},
	"corporation": {}, "plc": {}, "gmbh": {}, "srl": {},
}

// genericNameTerms mark listicle/marketing titles that must not become
// name-derived dedup keys.
var genericNameTerms = map[string]struct{}{
	"best": {}, "top": {}, "guide": {}, "list": {}, "trend": {}, "trends": {},
	"market": {}, "markets": {}, "industry": {}, "insights": {}, "news": {},
	"review": {}, "reviews": {}, "analysis": {}, "report": {}, "reports": {},
	"companies": {}, "brands": {}, "consumer": {}, "startup": {}, "startups": {},
}

// CanonicalDisplayName cleans a name for display: collapses whitespace and
// strips a trailing standalone integer ("Acme 2" style suffixes). Case and
// punctuation are preserved. Idempotent.
func CanonicalDisplayName(name string) string {
	normalized := strings.TrimSpace(spaceRe.ReplaceAllString(name, " "))
	canonical := strings.TrimSpace(trailingIntRe.ReplaceAllString(normalized, ""))
	if canonical == "" {
		return normalized
	}
	return canonical
}

// KeyFromName produces the aggressive normalization used to deduplicate
// near-identical brand rows. Internal grouping only, never for display.
func KeyFromName(name string) string {
	cleaned := strings.ToLower(CanonicalDisplayName(name))
	cleaned = strings.ReplaceAll(cleaned, "™", "") // ™
	cleaned = strings.ReplaceAll(cleaned, "®", "") // ®
	cleaned = nonAlnumRe.ReplaceAllString(cleaned, " ")

	var tokens []string
	for _, tok := range strings.Fields(cleaned) {
		if _, drop := dropTokens[tok]; drop {
			continue
		}
		tokens = append(tokens, tok)
	}
	key := strings.Join(tokens, " ")
	if len(key) > 140 {
		key = strings.TrimSpace(key[:140])
	}
	return key
}

// NormalizeCompanyName is the discovery-path normalization: lowercase,
// alphanumeric tokens only, legal suffixes dropped, capped at six tokens.
func NormalizeCompanyName(name string) string {
	cleaned := nonAlnumRe.ReplaceAllString(strings.ToLower(name), " ")
	var tokens []string
	for _, tok := range strings.Fields(cleaned) {
		if _, drop := legalSuffixes[tok]; drop {
			continue
		}
		tokens = append(tokens, tok)
		if len(tokens) == 6 {
			break
		}
	}
	return strings.Join(tokens, " ")
}

// IsGenericName reports whether a normalized name is too generic to serve as
// a dedup key on its own: a single token, or at least half the tokens drawn
// from the generic marketing-term list.
func IsGenericName(normName string) bool {
	if normName == "" {
		return true
	}
	tokens := strings.Fields(normName)
	if len(tokens) <= 1 {
		return true
	}
	hits := 0
	for _, tok := range tokens {
		if _, ok := genericNameTerms[tok]; ok {
			hits++
		}
	}
	threshold := len(tokens) / 2
	if threshold < 1 {
		threshold = 1
	}
	return hits >= threshold
}

// DomainLabel extracts the registrable second-level label of a host
// ("trailheadgear.com" -> "trailhead gear"... in practice "trailheadgear").
// Uses the public suffix list so "example.co.uk" resolves to "example".
func DomainLabel(host string) string {
	core := strings.ToLower(host)
	if i := strings.IndexByte(core, ':'); i >= 0 {
		core = core[:i]
	}
	core = strings.TrimPrefix(core, "www.")
	if core == "" {
		return ""
	}

	if etld1, err := publicsuffix.EffectiveTLDPlusOne(core); err == nil {
		if i := strings.IndexByte(etld1, '.'); i >= 0 {
			core = etld1[:i]
		} else {
			core = etld1
		}
	} else {
		// Fall back to the naive second-level label.
		parts := strings.Split(core, ".")
		var kept []string
		for _, p := range parts {
			if p != "" {
				kept = append(kept, p)
			}
		}
		switch {
		case len(kept) == 0:
			return ""
		case len(kept) >= 2:
			core = kept[len(kept)-2]
		default:
			core = kept[0]
		}
	}
	return strings.TrimSpace(nonAlnumRe.ReplaceAllString(core, " "))
}

// DomainLabelFromURL is DomainLabel applied to a full URL.
func DomainLabelFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return DomainLabel(parsed.Host)
}

// TitleCaseWords capitalizes the first letter of each word.
func TitleCaseWords(value string) string {
	words := strings.Fields(value)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Key builds the discovery dedup key for a (company name, source URL) pair.
// Generic names fall back to a domain-derived key so listicle titles from the
// same publisher never merge into one phantom entity.
func Key(companyName, rawURL string) string {
	normName := NormalizeCompanyName(companyName)
	if normName == "" || IsGenericName(normName) {
		domain := NormalizeCompanyName(DomainLabelFromURL(rawURL))
		if domain == "" {
			domain = "unknown"
		}
		return "domain:" + domain
	}
	tokens := strings.Fields(normName)
	if len(tokens) > 3 {
		tokens = tokens[:3]
	}
	return "name:" + strings.Join(tokens, " ")
}
