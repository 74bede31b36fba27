/*
Package factory provides JSON to Go policy document conversion.

PURPOSE:
  Converts JSON policy documents into policy.Document values. HR edits the
  attendance rules as JSON in the admin console; the factory fills in
  defaults, rejects unknown fields and validates the result before anything
  downstream sees it.

JSON SCHEMA (abridged):
  {
    "name": "Head office",
    "work_hours": {"on_duty": "09:00", "off_duty": "18:30",
                   "lunch_start": "12:00", "lunch_end": "13:30"},
    "full_day_leave_hours": "8",
    "late_rules": [
      {"previous_day_checkout_time": "18:00", "late_threshold_time": "09:01"},
      {"previous_day_checkout_time": "21:00", "late_threshold_time": "10:00"}
    ],
    "exemption": {"late_exemption_enabled": true,
                  "late_exemption_count": 3, "late_exemption_minutes": 15},
    "penalty": {"enabled": true, "mode": "capped", "sub_mode": "ladder",
                "max_performance_penalty": "250",
                "ladder": [{"min": 0, "max": 5, "amount": "50"}]},
    "overtime": {"checkpoints": ["19:30", "20:30", "22:00", "24:00"]}
  }

DEFAULTS:
  - full_day_leave_hours: 8
  - attendance_days.should_attend_mode: workdays
  - remote_work.days[].mode: full_day
  - remote_work.days[].scope: all

USAGE:
  f := factory.NewDocumentFactory()
  doc, err := f.ParseDocument(jsonString)

SEE ALSO:
  - policy/document.go: Document type definition
  - presets.go: Ready-made documents
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/policy"
)

// DefaultFullDayLeaveHours is the standard office threshold.
var DefaultFullDayLeaveHours = decimal.NewFromInt(8)

// DocumentFactory converts JSON documents to policy.Document.
type DocumentFactory struct {
	// Strict rejects fields the Document does not know.
	Strict bool
}

func NewDocumentFactory() *DocumentFactory {
	return &DocumentFactory{Strict: true}
}

// ParseDocument decodes, defaults and validates a JSON document.
func (f *DocumentFactory) ParseDocument(jsonStr string) (*policy.Document, error) {
	return f.Parse([]byte(jsonStr))
}

func (f *DocumentFactory) Parse(data []byte) (*policy.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if f.Strict {
		dec.DisallowUnknownFields()
	}

	var doc policy.Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON: %v", generic.ErrInvalidPolicy, err)
	}

	ApplyDefaults(&doc)

	if err := policy.Validate(doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ApplyDefaults fills fields whose zero value is never meaningful.
func ApplyDefaults(doc *policy.Document) {
	if doc.FullDayLeaveHours.IsZero() {
		doc.FullDayLeaveHours = DefaultFullDayLeaveHours
	}
	if doc.AttendanceDays.ShouldAttendMode == "" {
		doc.AttendanceDays.ShouldAttendMode = policy.ShouldAttendWorkdays
	}
	for i := range doc.RemoteWork.Days {
		d := &doc.RemoteWork.Days[i]
		if d.Mode == "" {
			d.Mode = policy.RemoteFullDay
		}
		if d.Scope == "" {
			d.Scope = policy.ScopeAll
		}
	}
}

// ToJSON renders a document the way ParseDocument reads it.
func ToJSON(doc policy.Document) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal policy document: %w", err)
	}
	return string(data), nil
}
