package domain

import (
	"fmt"
	"time"
)

const DefaultLimit = 50

type Connection struct {
	ID        string
	NodeID    string
	Title     string
	Mode      string
	Connector string
	StartedAt time.Time
}

func (c Connection) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("connection id is required")
	}
	if c.NodeID == "" {
		return fmt.Errorf("connection node id is required")
	}
	if c.Connector == "" {
		return fmt.Errorf("connection connector is required")
	}
	return nil
}

// NormalizeLimit maps non-positive limits to DefaultLimit.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
