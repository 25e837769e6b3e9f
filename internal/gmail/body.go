package gmail

import (
	"encoding/base64"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	gmail "google.golang.org/api/gmail/v1"
)

const (
	mimeTextPlain = "text/plain"
	mimeTextHTML  = "text/html"
)

// stripPolicy removes every tag and keeps only text content.
var stripPolicy = newStripPolicy()

func newStripPolicy() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}

// HeaderValue returns the first header called name, or "".
func HeaderValue(m *gmail.Message, header string) string {
	mpart := m.Payload
	if mpart == nil {
		return ""
	}
	for _, mph := range mpart.Headers {
		if mph.Name == header {
			return mph.Value
		}
	}
	return ""
}

// MessageBody picks the text shown for a message. A payload without MIME
// parts yields the snippet verbatim; otherwise the first decodable
// text/plain part wins, then a stripped text/html part, then the snippet.
func MessageBody(msg *gmail.Message) string {
	if msg.Payload == nil || len(msg.Payload.Parts) == 0 {
		return msg.Snippet
	}

	if text, ok := firstPart(msg.Payload, mimeTextPlain); ok {
		return text
	}
	if markup, ok := firstPart(msg.Payload, mimeTextHTML); ok {
		if text := HTMLToText(markup); text != "" {
			return text
		}
	}
	return msg.Snippet
}

// HTMLToText strips markup and collapses whitespace.
func HTMLToText(markup string) string {
	text := html.UnescapeString(stripPolicy.Sanitize(markup))
	return strings.Join(strings.Fields(text), " ")
}

// firstPart returns the decoded data of the first part with mimeType in
// depth-first order.
func firstPart(root *gmail.MessagePart, mimeType string) (string, bool) {
	var (
		body  string
		found bool
	)
	walkParts(root, func(part *gmail.MessagePart) {
		if found || part.MimeType != mimeType || part.Body == nil || part.Body.Data == "" {
			return
		}
		decoded, err := decodeBody(part.Body.Data)
		if err != nil {
			return
		}
		body, found = decoded, true
	})
	return body, found
}

// walkParts recursively walks through message parts
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}

	fn(part)

	for _, subpart := range part.Parts {
		walkParts(subpart, fn)
	}
}

// decodeBody decodes base64url body data, padded or not, falling back to
// the standard alphabet.
func decodeBody(data string) (string, error) {
	for _, enc := range []*base64.Encoding{base64.URLEncoding, base64.RawURLEncoding, base64.StdEncoding} {
		if decoded, err := enc.DecodeString(data); err == nil {
			return string(decoded), nil
		}
	}
	return "", fmt.Errorf("failed to decode message body")
}
