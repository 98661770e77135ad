package inventory

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/procuredesk/procuredesk/internal/platform/filestore"
	"github.com/procuredesk/procuredesk/internal/shared"
)

// GlobalItems is the file the resource catalog lives in.
const GlobalItems = "inventory_items.json"

// Item is one catalog resource shown in the browsing view.
type Item struct {
	ResourceCode string  `json:"resource_code"`
	Description  string  `json:"item_description"`
	Unit         string  `json:"unit"`
	Available    float64 `json:"available_quantity"`
	Category     string  `json:"category,omitempty"`
	Location     string  `json:"location,omitempty"`
}

// Catalog serves item details and availability from the resource file.
// The file is read once and cached; Reload picks up external edits.
type Catalog struct {
	store *filestore.Store

	mu     sync.RWMutex
	items  []Item
	byCode map[string]int
	loaded bool
}

// NewCatalog wires the catalog to a file store.
func NewCatalog(store *filestore.Store) *Catalog {
	return &Catalog{store: store}
}

// Reload re-reads the resource file.
func (c *Catalog) Reload(ctx context.Context) error {
	var items []Item
	if err := c.store.LoadGlobal(GlobalItems, &items); err != nil {
		return err
	}
	byCode := make(map[string]int, len(items))
	for i, item := range items {
		byCode[item.ResourceCode] = i
	}
	c.mu.Lock()
	c.items = items
	c.byCode = byCode
	c.loaded = true
	c.mu.Unlock()
	return nil
}

func (c *Catalog) ensureLoaded() {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if !loaded {
		_ = c.Reload(context.Background())
	}
}

// List returns catalog items, optionally filtered by a case-insensitive
// query over code and description.
func (c *Catalog) List(query string) []Item {
	c.ensureLoaded()
	c.mu.RLock()
	defer c.mu.RUnlock()
	if query == "" {
		return append([]Item(nil), c.items...)
	}
	needle := itemFold.String(query)
	var out []Item
	for _, item := range c.items {
		if containsFold(item.ResourceCode, needle) || containsFold(item.Description, needle) {
			out = append(out, item)
		}
	}
	return out
}

// Get returns the details for one resource code.
func (c *Catalog) Get(code string) (Item, error) {
	c.ensureLoaded()
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i, ok := c.byCode[code]; ok {
		return c.items[i], nil
	}
	return Item{}, shared.NotFoundf("resource %s", code)
}

// Available reports the stocked quantity for a resource code and whether
// the catalog knows it at all.
func (c *Catalog) Available(code string) (float64, bool) {
	item, err := c.Get(code)
	if err != nil {
		return 0, false
	}
	return item.Available, true
}

var itemFold = cases.Fold()

func containsFold(haystack, foldedNeedle string) bool {
	return strings.Contains(itemFold.String(haystack), foldedNeedle)
}
