package providers

import (
	"fmt"

	"gamatrix/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate checks the struct tags of every section, then the rules tags
// can't express: each user listed once, non-negative intervals.
func (c *CnfValidator) Validate() error {
	v := validate.Struct(c.conf)
	if !v.Validate() {
		return v.Errors
	}

	seen := make(map[int]struct{}, len(c.conf.Users))
	for i := range c.conf.Users {
		u := &c.conf.Users[i]
		uv := validate.Struct(u)
		if !uv.Validate() {
			return fmt.Errorf("users[%d]: %w", i, uv.Errors)
		}
		if _, dup := seen[u.ID]; dup {
			return fmt.Errorf("users[%d]: duplicate user id %d", i, u.ID)
		}
		seen[u.ID] = struct{}{}
	}

	if c.conf.Ingestion.RescanInterval < 0 {
		return fmt.Errorf("ingestion.rescanInterval must not be negative")
	}
	for title, meta := range c.conf.Metadata {
		if meta.MaxPlayers != nil && *meta.MaxPlayers < 0 {
			return fmt.Errorf("metadata %q: max_players must not be negative", title)
		}
	}
	return nil
}
