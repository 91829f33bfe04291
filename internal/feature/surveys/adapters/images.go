package adapters

import (
	"encoding/json"
	"fmt"
	"strings"

	"survey_backend/internal/feature/surveys/domain/entity"
)

// encodeImages serializes the list into the single images column. A nil list is stored as "[]".
func encodeImages(l entity.ImageList) (*string, error) {
	b, err := json.Marshal(l.OrEmpty())
	if err != nil {
		return nil, fmt.Errorf("encode images: %w", err)
	}
	s := string(b)
	return &s, nil
}

// decodeImages parses the images column. NULL, blank and JSON null all decode to an empty list.
func decodeImages(raw *string) (entity.ImageList, error) {
	if raw == nil {
		return entity.ImageList{}, nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" || s == "null" {
		return entity.ImageList{}, nil
	}

	var l entity.ImageList
	if err := json.Unmarshal([]byte(s), &l); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	return l.OrEmpty(), nil
}
