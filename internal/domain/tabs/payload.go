package tabs

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/AgentOS/browser/internal/shared/id"
)

// ErrInvalidPayload is returned when a persisted payload cannot be decoded
var ErrInvalidPayload = errors.New("invalid tab payload")

// Payload is the serializable webview state carried by a tab. The
// collection never inspects it.
type Payload interface {
	Encode() map[string]interface{}
}

// Codec creates and decodes payloads. It is supplied by whatever owns the
// webview; Page/PageCodec is the implementation the service uses.
type Codec interface {
	New() Payload
	Decode(m map[string]interface{}) (Payload, error)
}

// BlankURL is the URL of a fresh tab
const BlankURL = "about:blank"

// Page is the default payload: a page identity plus what the UI shows
type Page struct {
	ID    id.TabID `json:"id"`
	URL   string   `json:"url"`
	Title string   `json:"title"`
}

// NewPage creates a page payload with a fresh ID
func NewPage(url, title string) *Page {
	if url == "" {
		url = BlankURL
	}
	return &Page{ID: id.NewTabID(), URL: url, Title: title}
}

// Encode implements Payload
func (p *Page) Encode() map[string]interface{} {
	return map[string]interface{}{
		"id":    p.ID.String(),
		"url":   p.URL,
		"title": p.Title,
	}
}

// PageCodec implements Codec for *Page
type PageCodec struct{}

// New returns a blank page
func (PageCodec) New() Payload {
	return NewPage(BlankURL, "")
}

// Decode rebuilds a page. A missing or empty ID is replaced with a fresh one;
// a missing URL means a blank page.
func (PageCodec) Decode(m map[string]interface{}) (Payload, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil map", ErrInvalidPayload)
	}

	url, err := optionalString(m, "url")
	if err != nil {
		return nil, err
	}
	title, err := optionalString(m, "title")
	if err != nil {
		return nil, err
	}
	tabID, err := optionalString(m, "id")
	if err != nil {
		return nil, err
	}

	page := NewPage(url, title)
	if tabID != "" {
		page.ID = id.TabID(tabID)
	}
	return page, nil
}

func optionalString(m map[string]interface{}, key string) (string, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T", ErrInvalidPayload, key, raw)
	}
	return s, nil
}
