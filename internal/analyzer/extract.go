package analyzer

import (
	"encoding/json"
	"strings"

	"github.com/BerylCAtieno/kicks-match/internal/models"
)

var shoeKeys = []string{
	"brand_guess",
	"model_guess",
	"dominant_colors",
	"accent_colors",
	"materials",
	"style_tags",
	"short_text_summary",
}

// ExtractShoe pulls a ShoeDescription out of free model text. The whole text
// is tried first, then every balanced top-level {...} block in order. The
// bool is false when nothing usable was found.
func ExtractShoe(text string) (models.ShoeDescription, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ShoeDescription{}, false
	}

	if shoe, ok := decodeShoe(text); ok {
		return shoe, true
	}

	for _, candidate := range objectCandidates(text) {
		if shoe, ok := decodeShoe(candidate); ok {
			return shoe, true
		}
	}

	return models.ShoeDescription{}, false
}

// decodeShoe accepts an object only if it decodes cleanly and carries at
// least one of the known keys.
func decodeShoe(raw string) (models.ShoeDescription, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return models.ShoeDescription{}, false
	}

	known := false
	for _, key := range shoeKeys {
		if _, ok := fields[key]; ok {
			known = true
			break
		}
	}
	if !known {
		return models.ShoeDescription{}, false
	}

	var shoe models.ShoeDescription
	if err := json.Unmarshal([]byte(raw), &shoe); err != nil {
		return models.ShoeDescription{}, false
	}
	shoe.Normalize()

	return shoe, true
}

// objectCandidates returns every balanced top-level brace block. Quotes are
// only tracked inside a block, so prose around the JSON cannot confuse the
// depth count. An unclosed block restarts the scan just past its opening
// brace, since it may still contain a complete one.
func objectCandidates(text string) []string {
	var candidates []string
	lastClose := strings.LastIndexByte(text, '}')

	for pos := 0; pos < lastClose; {
		var (
			depth    int
			start    = -1
			inString bool
			escaped  bool
		)

		for i := pos; i < len(text); i++ {
			ch := text[i]

			if inString {
				switch {
				case escaped:
					escaped = false
				case ch == '\\':
					escaped = true
				case ch == '"':
					inString = false
				}
				continue
			}

			switch ch {
			case '"':
				if depth > 0 {
					inString = true
				}
			case '{':
				if depth == 0 {
					start = i
				}
				depth++
			case '}':
				if depth == 0 {
					continue
				}
				depth--
				if depth == 0 {
					candidates = append(candidates, text[start:i+1])
				}
			}
		}

		if depth == 0 {
			break
		}
		pos = start + 1
	}

	return candidates
}
