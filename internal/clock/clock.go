package clock

import "time"

// NowFunc returns the current time. Tests override it to get deterministic
// timestamps in claim histories and audit logs.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }
