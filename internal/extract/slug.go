package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxSlugLength bounds derived category ids; longer slugs are replaced by
// a stable hash so the id fits the store column.
const maxSlugLength = 100

// Slugify derives a stable identifier from a display name: diacritics
// stripped, lowercased, non-alphanumeric runs collapsed to single
// underscores. Vietnamese đ/Đ fold to d since Unicode decomposition does
// not cover them.
func Slugify(name string) string {
	name = strings.ReplaceAll(name, "đ", "d")
	name = strings.ReplaceAll(name, "Đ", "D")

	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		name,
	)
	if err != nil {
		stripped = name
	}

	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(stripped) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	slug := strings.Trim(b.String(), "_")
	if len(slug) > maxSlugLength {
		sum := sha256.Sum256([]byte(slug))
		return hex.EncodeToString(sum[:])
	}
	return slug
}
