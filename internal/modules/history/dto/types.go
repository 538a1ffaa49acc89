package dto

import "time"

type RecordInput struct {
	NodeID    string
	Title     string
	Mode      string
	Connector string
	StartedAt time.Time
}

type ConnectionOutput struct {
	ID        string
	NodeID    string
	Title     string
	Mode      string
	Connector string
	StartedAt time.Time
}
