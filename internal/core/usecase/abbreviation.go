package usecase

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/kirillkom/fleetdocs/internal/core/domain"
	"github.com/kirillkom/fleetdocs/internal/core/ports"
)

// Words that never contribute an initial to a generated abbreviation.
var insignificantWords = map[string]struct{}{
	"of": {}, "and": {}, "the": {}, "for": {}, "to": {},
	"in": {}, "on": {}, "a": {}, "an": {}, "or": {},
}

// AbbreviationResolver produces the short code used in generated filenames.
// Precedence is a strict cascade: user mapping, then AI hint, then the
// deterministic generator. A user mapping wins even when the AI disagrees.
type AbbreviationResolver struct {
	store ports.AbbreviationStore
}

func NewAbbreviationResolver(store ports.AbbreviationStore) *AbbreviationResolver {
	return &AbbreviationResolver{store: store}
}

// Resolve never returns empty for a non-empty canonical name. Store errors
// degrade to the next tier; naming must not block an ingestion.
func (r *AbbreviationResolver) Resolve(ctx context.Context, canonicalName, aiHint string) string {
	key := domain.NormalizeKey(canonicalName)
	if key != "" {
		mapping, err := r.store.Get(ctx, key)
		switch {
		case err == nil && mapping != nil && strings.TrimSpace(mapping.Abbreviation) != "":
			if err := r.store.IncrementUsage(ctx, key); err != nil {
				slog.Warn("abbreviation_usage_increment_failed", "key", key, "error", err)
			}
			return strings.TrimSpace(mapping.Abbreviation)
		case err != nil && !domain.IsKind(err, domain.ErrMappingNotFound):
			slog.Warn("abbreviation_lookup_failed", "key", key, "error", err)
		}
	}

	if hint := strings.TrimSpace(aiHint); hint != "" {
		return hint
	}

	return GenerateAbbreviation(canonicalName)
}

// GenerateAbbreviation is the tier-3 fallback: upper-cased initials of the
// significant words of the canonical name. It never returns empty; inputs
// with no usable characters fall back to "DOC".
func GenerateAbbreviation(canonicalName string) string {
	words := strings.FieldsFunc(canonicalName, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var initials []rune
	for _, word := range words {
		if _, skip := insignificantWords[strings.ToLower(word)]; skip {
			continue
		}
		initials = append(initials, unicode.ToUpper([]rune(word)[0]))
	}
	if len(initials) > 0 {
		return string(initials)
	}

	// Every word was insignificant. Fall back to the first few word
	// characters of the raw input.
	var kept []rune
	for _, r := range canonicalName {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			kept = append(kept, unicode.ToUpper(r))
			if len(kept) == 3 {
				break
			}
		}
	}
	if len(kept) > 0 {
		return string(kept)
	}

	// No word characters at all.
	return "DOC"
}
