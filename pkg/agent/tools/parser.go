package tools

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"
)

var (
	// toolRegex matches a complete <tool>...</tool> block, across newlines.
	toolRegex = regexp.MustCompile(`(?s)<tool>.*?</tool>`)

	// ampersandEntityRegex matches ampersands that already begin a valid XML
	// entity and therefore must not be escaped again.
	ampersandEntityRegex = regexp.MustCompile(`&(?:amp|lt|gt|quot|apos|#\d+|#x[0-9a-fA-F]+);`)
)

// ParseToolCall extracts and parses the first tool call from an LLM
// response. Returns nil when the response contains no tool call.
func ParseToolCall(response string) (*ToolCall, error) {
	match := toolRegex.FindString(response)
	if match == "" {
		return nil, nil
	}

	var toolCall ToolCall
	if err := UnmarshalXMLWithFallback([]byte(match), &toolCall); err != nil {
		return nil, fmt.Errorf("failed to parse tool call XML: %w", err)
	}

	if toolCall.ToolName == "" {
		return nil, fmt.Errorf("tool call missing tool_name")
	}

	return &toolCall, nil
}

// HasToolCall reports whether the response contains a tool call block. The
// session loop uses it to tell an absent tool call from a malformed one.
func HasToolCall(response string) bool {
	return toolRegex.MatchString(response)
}

// UnmarshalXMLWithFallback unmarshals XML, retrying with ampersand escaping
// when the first attempt fails. LLMs routinely emit raw '&' in command
// strings and prose, which the strict XML decoder rejects.
func UnmarshalXMLWithFallback(data []byte, v interface{}) error {
	if err := xml.Unmarshal(data, v); err != nil {
		escaped := escapeUnescapedAmpersands(data)
		if retryErr := xml.Unmarshal(escaped, v); retryErr != nil {
			return err
		}
	}
	return nil
}

// escapeUnescapedAmpersands replaces bare '&' characters with '&amp;' while
// leaving existing entities intact.
func escapeUnescapedAmpersands(data []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(data))

	for i := 0; i < len(data); i++ {
		if data[i] != '&' {
			out.WriteByte(data[i])
			continue
		}
		if loc := ampersandEntityRegex.FindIndex(data[i:]); loc != nil && loc[0] == 0 {
			out.Write(data[i : i+loc[1]])
			i += loc[1] - 1
			continue
		}
		out.WriteString("&amp;")
	}

	return out.Bytes()
}

// XMLToMap converts an <arguments> block into a map of argument name to
// text value. Only direct children of the root element are collected, which
// is sufficient for the flat argument schemas tools declare.
func XMLToMap(data []byte) (map[string]interface{}, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	result := make(map[string]interface{})

	var rootSeen bool
	var current string
	var text strings.Builder
	depth := 0

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			if !rootSeen {
				rootSeen = true
				continue
			}
			depth++
			if depth == 1 {
				current = t.Name.Local
				text.Reset()
			}
		case xml.EndElement:
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && current != "" {
				result[current] = strings.TrimSpace(text.String())
				current = ""
			}
		case xml.CharData:
			if depth >= 1 {
				text.Write(t)
			}
		}
	}

	return result, nil
}
