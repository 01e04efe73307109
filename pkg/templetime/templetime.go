// Package templetime pins every displayed date to the temple's timezone (IST),
// whatever the host clock is set to.
package templetime

import (
	"sync"
	"time"
)

// Zone is the IANA name of the temple timezone.
const Zone = "Asia/Kolkata"

// ReceiptLayout is the date layout printed on receipts.
const ReceiptLayout = "02-01-2006 03:04 PM"

var (
	loc     *time.Location
	locOnce sync.Once
)

// Location returns Asia/Kolkata, or a fixed +05:30 zone when the host has no tzdata.
func Location() *time.Location {
	locOnce.Do(func() {
		l, err := time.LoadLocation(Zone)
		if err != nil {
			l = time.FixedZone("IST", 5*60*60+30*60)
		}
		loc = l
	})
	return loc
}

// Now returns the current time in the temple timezone.
func Now() time.Time {
	return time.Now().In(Location())
}

// FormatReceiptDate renders t as printed on receipts, e.g. "07-02-2026 10:30 AM".
func FormatReceiptDate(t time.Time) string {
	return t.In(Location()).Format(ReceiptLayout)
}
