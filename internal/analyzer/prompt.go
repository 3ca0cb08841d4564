package analyzer

import "fmt"

// SummaryWordLimit is requested from the model, not enforced.
const SummaryWordLimit = 25

func buildPrompt() string {
	return fmt.Sprintf(`You are an expert sneaker and footwear analyst. Look at the shoe in the attached photo and describe it.

Respond with ONLY a single JSON object, without markdown fences, comments or any other text. Use exactly these keys:

{
  "brand_guess": "best guess of the brand, or an empty string if unsure",
  "model_guess": "best guess of the model name, or an empty string if unsure",
  "dominant_colors": [{"name": "color name", "hex": "#RRGGBB", "ratio": 0.0}],
  "accent_colors": [{"name": "color name", "hex": "#RRGGBB"}],
  "materials": ["material"],
  "style_tags": ["style tag"],
  "short_text_summary": "one sentence"
}

Rules:
- hex values are a '#' followed by exactly six uppercase hexadecimal digits, e.g. #1A2B3C
- ratio is a number between 0 and 1 giving the share of the shoe covered by that color
- list at most 4 dominant colors and at most 4 accent colors, most prominent first
- materials and style_tags are short lowercase words, e.g. "leather", "mesh", "streetwear", "running"
- short_text_summary must be %d words or fewer`, SummaryWordLimit)
}
