// Package jsontext decodes JSON out of text captured from a rendered
// browser page. The capture is body text, so a blocked or interstitial
// page can wrap the payload in markup or noise; decoding is therefore a
// two-stage contract: strict decode first, then a bounded best-effort
// extraction of the first balanced bracketed substring.
package jsontext

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const previewLen = 200

// Decode parses text as JSON, falling back to Extract when the whole
// text is not valid JSON. The returned error carries a truncated preview
// of the raw text for diagnosis.
func Decode(text string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err == nil {
		return v, nil
	}

	candidate := text
	if looksLikeHTML(candidate) {
		candidate = stripHTML(candidate)
	}

	fragment, ok := Extract(candidate)
	if ok {
		if err := json.Unmarshal([]byte(fragment), &v); err == nil {
			return v, nil
		}
	}

	return nil, fmt.Errorf("jsontext: no parseable JSON in response: %q", preview(text))
}

// Extract returns the first balanced {...} or [...] substring. The scan
// is quote and escape aware so brackets inside string values do not
// terminate it early.
func Extract(text string) (string, bool) {
	start := -1
	var open, close byte
	for i := 0; i < len(text); i++ {
		if text[i] == '{' {
			start, open, close = i, '{', '}'
			break
		}
		if text[i] == '[' {
			start, open, close = i, '[', ']'
			break
		}
	}
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

func looksLikeHTML(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, "<")
}

func stripHTML(text string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}
	return doc.Text()
}

func preview(text string) string {
	if len(text) > previewLen {
		return text[:previewLen]
	}
	return text
}
