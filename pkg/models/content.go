package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// CardContent is the enriched payload attached to a card. The shape of
// Fields varies by part of speech (nouns carry articles and plurals, verbs
// carry conjugation tables); the scheduler treats the whole value as opaque
// and only presentation code branches on PartOfSpeech.
type CardContent struct {
	PartOfSpeech string          `json:"part_of_speech"`
	Translation  string          `json:"translation,omitempty"`
	Examples     []string        `json:"examples,omitempty"`
	Fields       json.RawMessage `json:"fields,omitempty"`
}

// Value implements driver.Valuer so content is stored as a JSON column
func (c CardContent) Value() (driver.Value, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal card content: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (c *CardContent) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*c = CardContent{}
		return nil
	case string:
		return json.Unmarshal([]byte(v), c)
	case []byte:
		return json.Unmarshal(v, c)
	default:
		return fmt.Errorf("cannot scan %T into CardContent", src)
	}
}
