package grading

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidAnswers is returned for answer payloads that are not a flat
// object of string question ids to string option ids.
var ErrInvalidAnswers = errors.New("invalid answers format")

// ParseAnswers decodes a submitted answers object. Empty-string values mean
// "unanswered" and are dropped.
func ParseAnswers(raw json.RawMessage) (map[string]string, error) {
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAnswers, err)
	}
	if generic == nil {
		return nil, fmt.Errorf("%w: answers must be an object", ErrInvalidAnswers)
	}

	answers := make(map[string]string, len(generic))
	for questionID, v := range generic {
		optionID, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: answer for %q is not a string", ErrInvalidAnswers, questionID)
		}
		if optionID == "" {
			continue
		}
		answers[questionID] = optionID
	}
	return answers, nil
}
