package ai

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ToText flattens a reply payload into plain text. Providers return content as
// a string, as an array of parts, or as an object; stored legacy entries can
// hold any JSON value. It never fails.
func ToText(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case []any:
		var b strings.Builder
		for _, p := range c {
			b.WriteString(partText(p))
		}
		return b.String()
	case []string:
		return strings.Join(c, "")
	case map[string]any:
		if t, ok := c["text"]; ok && t != nil {
			return ToText(t)
		}
		if t, ok := c["content"]; ok && t != nil {
			return ToText(t)
		}
		b, err := json.Marshal(c)
		if err != nil {
			return fmt.Sprint(c)
		}
		return string(b)
	case json.RawMessage:
		var decoded any
		if err := json.Unmarshal(c, &decoded); err != nil {
			return string(c)
		}
		return ToText(decoded)
	case json.Number:
		return c.String()
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(c)
	default:
		return fmt.Sprint(c)
	}
}

func partText(p any) string {
	switch part := p.(type) {
	case string:
		return part
	case map[string]any:
		if t, ok := part["text"]; ok && t != nil {
			return ToText(t)
		}
	}
	return ""
}
