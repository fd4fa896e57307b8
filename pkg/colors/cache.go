package colors

import (
	"strconv"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/storage"
)

const (
	slotKey = "department-colors"

	// NoDepartmentColor is the Google Calendar graphite used for unassigned tasks.
	NoDepartmentColor = "8"
	paletteSize       = 11
)

type DepartmentState struct {
	ColorID      string    `json:"color_id"`
	LastModified time.Time `json:"last_modified"`
}

// ColorCache assigns each department a stable calendar colour and recycles
// the least recently used one when the palette runs out.
type ColorCache struct {
	Departments map[string]*DepartmentState
	slot        storage.Slot
	dirty       bool
	now         func() time.Time
}

func NewColorCache(slot storage.Slot) (*ColorCache, error) {
	cache := &ColorCache{
		Departments: make(map[string]*DepartmentState),
		slot:        slot,
		now:         time.Now,
	}
	if _, err := storage.GetJSON(slot, slotKey, &cache.Departments); err != nil {
		return nil, err
	}
	return cache, nil
}

func (c *ColorCache) Save() error {
	if !c.dirty {
		return nil
	}
	if err := storage.SetJSON(c.slot, slotKey, c.Departments); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// GetColorID returns the colour of a department, assigning one on first use.
func (c *ColorCache) GetColorID(department string) string {
	if department == "" {
		return NoDepartmentColor
	}

	if state, exists := c.Departments[department]; exists {
		state.LastModified = c.now()
		c.dirty = true
		return state.ColorID
	}
	return c.assignColor(department)
}

func (c *ColorCache) assignColor(department string) string {
	used := make(map[string]bool)
	for _, s := range c.Departments {
		used[s.ColorID] = true
	}

	for i := 1; i <= paletteSize; i++ {
		id := strconv.Itoa(i)
		if !used[id] {
			c.claim(department, id)
			return id
		}
	}

	// Palette exhausted: take the colour of the least recently used department.
	var oldest string
	var oldestTime time.Time
	for d, s := range c.Departments {
		if oldest == "" || s.LastModified.Before(oldestTime) {
			oldest, oldestTime = d, s.LastModified
		}
	}
	recycled := c.Departments[oldest].ColorID
	delete(c.Departments, oldest)
	c.claim(department, recycled)
	return recycled
}

func (c *ColorCache) claim(department, id string) {
	c.Departments[department] = &DepartmentState{ColorID: id, LastModified: c.now()}
	c.dirty = true
}
