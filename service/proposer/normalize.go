package proposer

import (
	"encoding/json"
	"strings"

	"github.com/viant/parsly"
)

// NormalizeWebhookArgs fills missing http_post arguments from the free form
// question text. Users tend to paste the destination inline ("url:
// https://...") or supply the payload as a bare string; this recovers a
// usable url and payload object without touching arguments the caller
// already set.
func NormalizeWebhookArgs(question string, args map[string]interface{}) map[string]interface{} {
	normalized := map[string]interface{}{}
	for k, v := range args {
		normalized[k] = v
	}
	payload := normalized["payload"]
	message := extractMessage(payload)
	if message == "" {
		message = question
	}

	if value, _ := normalized["url"].(string); value == "" {
		if URL := extractURL(message); URL != "" {
			normalized["url"] = URL
		} else if URL = extractURL(question); URL != "" {
			normalized["url"] = URL
		}
	}

	payloadMap, _ := payload.(map[string]interface{})
	if payloadMap == nil || payloadIsMessageOnly(payloadMap) {
		if extracted := extractPayload(message); extracted != nil {
			payloadMap = extracted
		} else if extracted = extractPayload(question); extracted != nil {
			payloadMap = extracted
		}
	}
	if payloadMap == nil {
		payloadMap = fallbackPayload(payload, message)
	}
	normalized["payload"] = payloadMap
	return normalized
}

func extractMessage(payload interface{}) string {
	switch actual := payload.(type) {
	case map[string]interface{}:
		message, _ := actual["message"].(string)
		return message
	case string:
		return actual
	}
	return ""
}

func payloadIsMessageOnly(payload map[string]interface{}) bool {
	if len(payload) != 1 {
		return false
	}
	_, ok := payload["message"]
	return ok
}

// extractURL returns a labeled url ("url: https://...") when present,
// otherwise the first URL in the text.
func extractURL(text string) string {
	if text == "" {
		return ""
	}
	cursor := parsly.NewCursor("", []byte(text), 0)
	first := ""
	for cursor.Pos < cursor.InputSize {
		matched := cursor.MatchAny(urlLabelToken, urlToken)
		switch matched.Code {
		case urlLabelToken.Code:
			matched = cursor.MatchOne(urlToken)
			if matched.Code == urlToken.Code {
				return trimURL(matched.Text(cursor))
			}
		case urlToken.Code:
			if first == "" {
				first = trimURL(matched.Text(cursor))
			}
		default:
			cursor.Pos++
		}
	}
	return first
}

// extractPayload returns the JSON object following a payload label.
func extractPayload(text string) map[string]interface{} {
	if text == "" {
		return nil
	}
	cursor := parsly.NewCursor("", []byte(text), 0)
	for cursor.Pos < cursor.InputSize {
		matched := cursor.MatchOne(payloadLabelToken)
		if matched.Code != payloadLabelToken.Code {
			cursor.Pos++
			continue
		}
		matched = cursor.MatchAfterOptional(whitespaceToken, jsonObjectToken)
		if matched.Code != jsonObjectToken.Code {
			continue
		}
		ret := map[string]interface{}{}
		if err := json.Unmarshal([]byte(matched.Text(cursor)), &ret); err != nil {
			continue
		}
		return ret
	}
	return nil
}

func fallbackPayload(payload interface{}, message string) map[string]interface{} {
	switch actual := payload.(type) {
	case map[string]interface{}:
		return actual
	case string:
		return map[string]interface{}{"message": actual}
	}
	if message != "" {
		return map[string]interface{}{"message": message}
	}
	return map[string]interface{}{}
}

func trimURL(candidate string) string {
	return strings.TrimRight(candidate, ").,]")
}
