package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type RFIDStatus string

const (
	RFIDStatusActive  RFIDStatus = "active"
	RFIDStatusInWash  RFIDStatus = "in_wash"
	RFIDStatusLost    RFIDStatus = "lost"
	RFIDStatusRetired RFIDStatus = "retired"
)

func (s RFIDStatus) Valid() bool {
	switch s {
	case RFIDStatusActive, RFIDStatusInWash, RFIDStatusLost, RFIDStatusRetired:
		return true
	}
	return false
}

type RFIDRecord struct {
	ID            uuid.UUID      `json:"id"`
	RFIDNumber    string         `json:"rfid_number"`
	CategoryID    *uuid.UUID     `json:"category_id"`
	CategoryName  *string        `json:"category_name"`
	ClientID      *uuid.UUID     `json:"client_id"`
	ClientName    *string        `json:"client_name"`
	Status        RFIDStatus     `json:"status"`
	Condition     string         `json:"condition"`
	Location      string         `json:"location"`
	WashCount     int            `json:"wash_count"`
	LastScannedAt *time.Time     `json:"last_scanned_at"`
	Notes         string         `json:"notes"`
	Payload       datatypes.JSON `json:"payload"`
	CreatedAt     time.Time      `json:"created_at"`
}

type RFIDFilter struct {
	ClientID *uuid.UUID
	Status   *RFIDStatus
	Search   string
	Page     Page
}
