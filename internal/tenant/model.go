// Package tenant defines the per-tenant relay configuration and the
// store that persists it.
package tenant

import "time"

// ChannelRef identifies a Telegram channel together with its display title.
type ChannelRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// WordFilter is a literal substring replacement rule. Rules are applied in
// insertion order, each pass operating on the output of the previous one.
type WordFilter struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// Config is the durable relay configuration of a single tenant. A record
// exists if and only if the tenant has completed /register.
type Config struct {
	TenantID           int64             `json:"tenant_id"`
	SourceChannel      *ChannelRef       `json:"source_channel,omitempty"`
	DestinationChannel *ChannelRef       `json:"destination_channel,omitempty"`
	WordFilters        []WordFilter      `json:"word_filters,omitempty"`
	FileRenameFilters  map[string]string `json:"file_rename_filters,omitempty"`
	ForwardingEnabled  bool              `json:"forwarding_enabled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetWordFilter inserts a replacement rule, or updates the replacement in
// place when a rule for old already exists. Insertion order is preserved
// because it determines the replacement pass order.
func (c *Config) SetWordFilter(old, new string) {
	for i := range c.WordFilters {
		if c.WordFilters[i].Old == old {
			c.WordFilters[i].New = new
			return
		}
	}
	c.WordFilters = append(c.WordFilters, WordFilter{Old: old, New: new})
}

// RemoveWordFilter removes the rule for old. Returns ErrFilterNotFound when
// no such rule exists.
func (c *Config) RemoveWordFilter(old string) error {
	for i := range c.WordFilters {
		if c.WordFilters[i].Old == old {
			c.WordFilters = append(c.WordFilters[:i], c.WordFilters[i+1:]...)
			return nil
		}
	}
	return ErrFilterNotFound
}

// SetFileRename inserts or replaces an exact-filename rename rule.
func (c *Config) SetFileRename(old, new string) {
	if c.FileRenameFilters == nil {
		c.FileRenameFilters = make(map[string]string)
	}
	c.FileRenameFilters[old] = new
}

// RemoveFileRename removes the rename rule for old. Returns
// ErrFilterNotFound when no such rule exists.
func (c *Config) RemoveFileRename(old string) error {
	if _, ok := c.FileRenameFilters[old]; !ok {
		return ErrFilterNotFound
	}
	delete(c.FileRenameFilters, old)
	return nil
}

// ReadyToForward reports whether both channel bindings are set.
func (c *Config) ReadyToForward() bool {
	return c.SourceChannel != nil && c.DestinationChannel != nil
}
