package services

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Street-type tokens dropped from addresses before comparison (EN, IT, DE, FR, ES).
var streetSuffixTokens = map[string]bool{
	"street": true, "st": true, "avenue": true, "ave": true, "av": true,
	"road": true, "rd": true, "boulevard": true, "blvd": true, "drive": true,
	"dr": true, "lane": true, "ln": true, "court": true, "ct": true,
	"place": true, "pl": true, "square": true, "sq": true, "highway": true, "hwy": true,
	"via": true, "viale": true, "piazza": true, "corso": true, "largo": true, "vicolo": true,
	"strasse": true, "str": true, "weg": true, "platz": true, "allee": true, "gasse": true,
	"rue": true, "chemin": true, "impasse": true,
	"calle": true, "avenida": true, "plaza": true, "paseo": true,
}

// Placeholder addresses never count as a match.
var placeholderAddresses = []string{
	"address not available",
	"location:",
	"online",
	"n/a",
}

var diacriticStripper = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func stripDiacritics(s string) string {
	out, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeProductName is the category cache key: NFKC, lowercase, trimmed,
// whitespace collapsed.
func NormalizeProductName(name string) string {
	name = norm.NFKC.String(name)
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// NormalizeAddress builds the comparison key for address-based dedup.
// "123 Main Street." and "123 main st" both become "123 main".
func NormalizeAddress(address string) string {
	s := strings.ToLower(stripDiacritics(address))
	s = strings.ReplaceAll(s, "ß", "ss")
	s = punctuationToSpace(s)

	tokens := strings.Fields(s)
	kept := tokens[:0]
	for _, tok := range tokens {
		if streetSuffixTokens[tok] {
			continue
		}
		kept = append(kept, trimGermanStreetSuffix(tok))
	}
	return strings.Join(kept, " ")
}

// Hauptstraße and Hauptstr. are written as one word.
func trimGermanStreetSuffix(tok string) string {
	for _, suffix := range []string{"strasse", "str"} {
		if len(tok) > len(suffix)+2 && strings.HasSuffix(tok, suffix) {
			return strings.TrimSuffix(tok, suffix)
		}
	}
	return tok
}

// IsPlaceholderAddress reports addresses that carry no postal information.
func IsPlaceholderAddress(address string) bool {
	a := strings.ToLower(strings.TrimSpace(address))
	if a == "" {
		return true
	}
	for _, p := range placeholderAddresses {
		if strings.HasPrefix(a, p) {
			return true
		}
	}
	return false
}

// NormalizeName lowercases, strips diacritics and punctuation, collapses spaces.
func NormalizeName(name string) string {
	s := strings.ToLower(stripDiacritics(name))
	s = punctuationToSpace(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeURL drops scheme, "www.", fragment, trailing slashes and tracking
// parameters. The remaining query is kept with its keys sorted, since it often
// is what identifies the listing (Google Maps place_id, item ids).
func NormalizeURL(raw string) string {
	u := parseLooseURL(raw)
	if u == nil {
		return ""
	}
	key := hostKey(u) + strings.TrimRight(u.Path, "/")

	q := u.Query()
	for k := range q {
		if isTrackingParam(k) {
			q.Del(k)
		}
	}
	if len(q) > 0 {
		// Encode sorts by key
		key += "?" + q.Encode()
	}
	return key
}

// DomainOf returns the host of a URL without "www.".
func DomainOf(raw string) string {
	u := parseLooseURL(raw)
	if u == nil {
		return ""
	}
	return hostKey(u)
}

func parseLooseURL(raw string) *url.URL {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil
	}
	return u
}

func hostKey(u *url.URL) string {
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

func isTrackingParam(key string) bool {
	k := strings.ToLower(key)
	switch k {
	case "gclid", "fbclid", "msclkid", "ref", "ref_src", "srsltid":
		return true
	}
	return strings.HasPrefix(k, "utm")
}

func punctuationToSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, s)
}
