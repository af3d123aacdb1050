// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import (
	"encoding/json"
	"strings"

	"github.com/taibuivan/gamecatalog/pkg/pointer"
)

// normalizeSource collapses known aliases for a provider's media source
// label to the DB-supported canonical form, per spec.md §4.7 step 2.
// Enum-availability fallback (psstore → psn when the enum lacks psstore) is
// applied separately in [Ingestor.resolveSourceLabel] once the schema shape
// is known.
func normalizeSource(source string) string {
	lowered := strings.ToLower(strings.TrimSpace(source))
	switch {
	case lowered == "psn" || lowered == "ps-store" || strings.HasPrefix(lowered, "playstation"):
		return "psstore"
	case lowered == "steampowered":
		return "steam"
	default:
		return lowered
	}
}

// normalizeMediaType lowercases/trims a media_type label to its canonical
// spelling. The DB-enum-availability fallback (background → artwork when
// the enum lacks "background") is applied separately, in
// [Ingestor.resolveMediaTypeLabel], once the target column's enum is known.
func normalizeMediaType(mediaType string) string {
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// sortPriority implements spec.md §4.7 step 3's ordering: cover (0) <
// background (1) < artwork (2) < screenshot (3) < other (9). It must be
// computed from the canonical (pre-enum-fallback) media type, before any
// enum-unavailability collapse of "background" into "artwork" — otherwise
// background rows would lose their distinct rank.
func sortPriority(mediaType string) int {
	switch mediaType {
	case "cover":
		return 0
	case "background":
		return 1
	case "artwork":
		return 2
	case "screenshot":
		return 3
	default:
		return 9
	}
}

// deriveURLs best-effort probes provider-specific metadata for URL-shaped
// values under common key names, per spec.md §4.7 step 6.
func deriveURLs(providerData map[string]any) (original, thumbnail, stream, poster *string) {
	original = pickURL(providerData, "original_url", "originalUrl", "full_url", "image_url")
	thumbnail = pickURL(providerData, "thumbnail_url", "thumbnailUrl", "thumb_url", "thumb")
	stream = pickURL(providerData, "stream_url", "streamUrl", "video_url", "videoUrl")
	poster = pickURL(providerData, "poster_url", "posterUrl", "poster")
	return
}

func pickURL(data map[string]any, keys ...string) *string {
	for _, key := range keys {
		raw, ok := data[key]
		if !ok {
			continue
		}
		str, ok := raw.(string)
		if !ok {
			continue
		}
		if looksLikeURL(str) {
			return pointer.To(str)
		}
	}
	return nil
}

func looksLikeURL(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}

// withTitle folds title into a copy of data under the "title" key, since
// game_media has no dedicated title column — title travels inside
// provider_data instead. A nil title leaves data untouched.
func withTitle(data map[string]any, title *string) map[string]any {
	if title == nil {
		return data
	}
	out := make(map[string]any, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out["title"] = *title
	return out
}

// encodeProviderData serializes the raw provider payload into the
// provider_data JSON column, defaulting to an empty object.
func encodeProviderData(data map[string]any) []byte {
	if len(data) == 0 {
		return []byte("{}")
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return []byte("{}")
	}
	return encoded
}
