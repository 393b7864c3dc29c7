package analytics

// Category groups events by the area of the store they came from.
type Category string

const (
	CategoryPageView Category = "page_view"
	CategoryProduct  Category = "product"
	CategoryCart     Category = "cart"
	CategoryCheckout Category = "checkout"
	CategorySearch   Category = "search"
	CategoryUser     Category = "user"
	CategoryBlog     Category = "blog"
	CategoryTherapy  Category = "therapy"
)

// Event is a single telemetry event. It is immutable once created and
// carries no timestamp or session id; those are attached at the dispatch
// boundary, not at creation time.
type Event struct {
	Category Category       `json:"category"`
	Action   string         `json:"action"`
	Label    string         `json:"label,omitempty"`
	Value    float64        `json:"value,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// PageView describes a screen transition as reported by the router.
type PageView struct {
	Path     string
	Title    string
	Referrer string
}

// Event lowers a page view into the canonical page_view event shape.
func (pv PageView) Event() Event {
	metadata := map[string]any{
		"title": pv.Title,
		"path":  pv.Path,
	}
	if pv.Referrer != "" {
		metadata["referrer"] = pv.Referrer
	}
	return Event{
		Category: CategoryPageView,
		Action:   "view",
		Label:    pv.Path,
		Metadata: metadata,
	}
}
