package service

import "time"

// timeNow is swapped out in tests that exercise expiry windows.
var timeNow = time.Now
