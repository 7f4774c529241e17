package models

import (
	"testing"
	"time"
)

func TestFormatDocumentNumber(t *testing.T) {
	date := time.Date(2026, time.September, 5, 14, 30, 0, 0, time.UTC)

	if got := FormatDocumentNumber(DocumentKindStockRequest, date, 1); got != "REQ-20260905-0001" {
		t.Errorf("got %q", got)
	}
	if got := FormatDocumentNumber(DocumentKindOBD, date, 42); got != "OBD-20260905-0042" {
		t.Errorf("got %q", got)
	}
	// A day with more than 9999 documents widens rather than truncates.
	if got := FormatDocumentNumber(DocumentKindStockRequest, date, 12345); got != "REQ-20260905-12345" {
		t.Errorf("got %q", got)
	}
}
