package timer

import (
	"sync/atomic"
	"time"
)

// Time contains the unix-time in milliseconds updated every [Resolution] milliseconds
var Time = new(atomic.Int64)

func Now() time.Time {
	millis := Time.Load()
	return time.Unix(millis/1000, (millis%1000)*1e6)
}

// DateLayout is the IMF-fixdate format of RFC 9110, 5.6.7.
const DateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

var date atomic.Pointer[string]

// Date returns the current time in DateLayout, suitable for the Date header. The value is
// refreshed together with Time, so it's formatted at most once per Resolution.
func Date() string {
	return *date.Load()
}

// AppendDate appends the formatted t to the buffer.
func AppendDate(b []byte, t time.Time) []byte {
	return t.UTC().AppendFormat(b, DateLayout)
}

// Resolution is the frequency at which time is updated. Default 500ms are
// precise enough for setting I/O deadlines
const Resolution = 500 * time.Millisecond

func update() {
	now := time.Now()
	Time.Store(now.UnixMilli())
	formatted := string(AppendDate(make([]byte, 0, len(DateLayout)), now))
	date.Store(&formatted)
}

func init() {
	// there is no guarantee that the goroutine will be started immediately. If it won't,
	// some rapid usage of the timer will result in zero-time, which isn't great actually
	update()

	go func() {
		for {
			time.Sleep(Resolution)
			update()
		}
	}()
}
