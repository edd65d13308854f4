package models

import "time"

// Tick describes one completed iteration of a run: the settled bet, the rules it
// fired and the state left behind for the next bet
type Tick struct {
	RunID     string         `json:"run_id"`
	Number    int64          `json:"number"`
	Outcome   *BetResult     `json:"outcome"`
	Fired     []string       `json:"fired"`
	Modifiers WagerModifiers `json:"modifiers"`
	Snapshot  Snapshot       `json:"snapshot"`
	Latency   time.Duration  `json:"latency"`
}
