package catalog

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/avolkovs/clipstream/internal/clips/models"
)

// EncodeCursor packs a feed position into an opaque continuation token.
func EncodeCursor(pos models.FeedPosition) string {
	raw, _ := json.Marshal(pos)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor unpacks a token produced by EncodeCursor. An empty token means
// "first page" and decodes to nil.
func DecodeCursor(token string) (*models.FeedPosition, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", models.ErrValidation)
	}
	var pos models.FeedPosition
	if err := json.Unmarshal(raw, &pos); err != nil {
		return nil, fmt.Errorf("decode cursor: %w", models.ErrValidation)
	}
	return &pos, nil
}
