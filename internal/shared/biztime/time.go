// Package biztime provides utilities for business timezone calculations.
// All storage and transport use UTC. The business timezone is only used where
// the gateways demand wall-clock timestamps (VNPay create/expire dates are
// interpreted in the merchant's local timezone).
package biztime

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultTimezone is the default business timezone.
	DefaultTimezone = "Asia/Ho_Chi_Minh"

	// GatewayTimestampLayout is the yyyymmddhhmmss layout VNPay expects.
	GatewayTimestampLayout = "20060102150405"
)

var (
	bizLocation     *time.Location
	bizLocationOnce sync.Once
	initErr         error
)

// Init initializes the business timezone. Should be called once at startup.
// If tz is empty, defaults to Asia/Ho_Chi_Minh.
func Init(tz string) error {
	bizLocationOnce.Do(func() {
		if tz == "" {
			tz = DefaultTimezone
		}
		bizLocation, initErr = time.LoadLocation(tz)
	})
	return initErr
}

// MustInit initializes the business timezone and panics on error.
func MustInit(tz string) {
	if err := Init(tz); err != nil {
		panic(fmt.Sprintf("failed to initialize business timezone %q: %v", tz, err))
	}
}

// Location returns the business timezone location, auto-initializing with the
// default timezone when Init was never called.
func Location() *time.Location {
	if bizLocation == nil {
		if err := Init(""); err != nil {
			panic(fmt.Sprintf("biztime: failed to auto-initialize with default timezone: %v", err))
		}
	}
	return bizLocation
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// FormatGatewayTimestamp formats t as yyyymmddhhmmss in the business timezone.
func FormatGatewayTimestamp(t time.Time) string {
	return t.In(Location()).Format(GatewayTimestampLayout)
}

// GatewayDayPrefix returns the yymmdd prefix ZaloPay requires on app_trans_id.
func GatewayDayPrefix(t time.Time) string {
	return t.In(Location()).Format("060102")
}

// ToBizTimezone converts a UTC time to business timezone for display.
func ToBizTimezone(t time.Time) time.Time {
	return t.In(Location())
}
