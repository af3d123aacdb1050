// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slugkit

import (
	"strings"

	"github.com/taibuivan/gamecatalog/pkg/pointer"
)

// EditionHint scans title for an "<label> Edition" pattern, and falls back
// to scanning every string leaf of metadata (recursing through nested maps
// and slices) for the same pattern when title carries none.
func EditionHint(title string, metadata map[string]any) (hasEdition bool, label *string) {
	if l, ok := editionFromText(title); ok {
		return true, pointer.To(l)
	}
	if metadata == nil {
		return false, nil
	}
	if l, ok := editionFromLeaves(metadata); ok {
		return true, pointer.To(l)
	}
	return false, nil
}

// editionFromText tokenizes text on whitespace; if a token
// case-insensitively equals "Edition", the preceding token (stripped of
// punctuation) is the edition label.
func editionFromText(text string) (string, bool) {
	tokens := strings.Fields(text)
	for i := 1; i < len(tokens); i++ {
		if !strings.EqualFold(tokens[i], "Edition") {
			continue
		}
		label := strings.Trim(tokens[i-1], ".,!?:;\"'()[]")
		if label == "" {
			continue
		}
		return label, true
	}
	return "", false
}

// editionFromLeaves walks v (a JSON-decoded value tree) and tries
// editionFromText against every string leaf it finds, depth-first.
func editionFromLeaves(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return editionFromText(val)
	case map[string]any:
		for _, child := range val {
			if l, ok := editionFromLeaves(child); ok {
				return l, true
			}
		}
	case []any:
		for _, child := range val {
			if l, ok := editionFromLeaves(child); ok {
				return l, true
			}
		}
	}
	return "", false
}
