package shared

import "time"

// Date layouts used across persisted documents and views.
const (
	// DisplayDate is the dd/mm/yyyy layout used on requests, approvals and rejections.
	DisplayDate = "02/01/2006"
	// StampDate adds the time of day, used on rejection and delivery timestamps.
	StampDate = "02/01/2006 15:04"
	// ISODate is the layout stored on delivery entries.
	ISODate = "2006-01-02"
)

// Clock supplies the current time. Services take a Clock so tests can pin it.
type Clock func() time.Time

// Today formats now as a display date.
func Today(now Clock) string {
	return now().Format(DisplayDate)
}

// Stamp formats now as a display timestamp.
func Stamp(now Clock) string {
	return now().Format(StampDate)
}
