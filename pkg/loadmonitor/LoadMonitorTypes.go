package loadmonitor

import "sync"
import "time"


type LoadMonitor struct {
	mutex sync.Mutex

	window time.Duration
	threshold float64 // events per second over window that counts as "high load"

	events []time.Time // event timestamps within window, oldest first
}

const DefaultWindow = 5 * time.Second
const DefaultThreshold = 50.0 // events/sec
