package eventbus

import (
	"time"

	"github.com/grachmannico95/shopease-be/internal/domain"
)

type EventType string

const (
	EventTypeScanRecorded EventType = "scan.recorded"
)

type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// ScanRecordedEvent carries a QR scan accepted by the API but not yet
// persisted. Scan.ID doubles as the event ID so redelivery is harmless.
type ScanRecordedEvent struct {
	Scan domain.QRScan `json:"scan"`
}

// NewScanRecorded wraps scan in an event.
func NewScanRecorded(scan domain.QRScan) Event {
	return Event{
		ID:        scan.ID,
		Type:      EventTypeScanRecorded,
		Payload:   ScanRecordedEvent{Scan: scan},
		Timestamp: scan.ScannedAt,
	}
}
