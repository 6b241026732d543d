package audit

import "time"

// Entry represents a single audit log record.
type Entry struct {
	Seq      uint64    `json:"seq"`
	Time     time.Time `json:"ts"`
	PrevHash string    `json:"prev_hash"`
	Run      string    `json:"run"`              // run id shared with log lines
	Source   string    `json:"source"`           // document the tree came from
	Tree     string    `json:"tree"`             // rendered command tree
	Verbs    []string  `json:"verbs"`            // leaf verbs, left to right
	Status   int       `json:"status"`           // 0 = success
	Exited   bool      `json:"exited,omitempty"` // true if exit/quit ended the run
	Error    string    `json:"error,omitempty"`  // error message if the run failed
	Duration float64   `json:"duration_ms"`      // evaluation time in milliseconds
	Cwd      string    `json:"cwd"`              // working directory at start
	Hash     string    `json:"hash"`             // SHA-256 of this entry (with hash field empty)
}

// Record is what a caller reports about one evaluation.
type Record struct {
	Run      string
	Source   string
	Tree     string
	Verbs    []string
	Status   int
	Exited   bool
	Err      error
	Duration time.Duration
	Cwd      string
}
