package importer

import "time"

// Status is a snapshot of the importer for the status page.
type Status struct {
	Running    bool
	RunID      string
	Runs       int
	StartedAt  time.Time
	FinishedAt time.Time
	LastError  string
	Last       Result
}

func (im *Importer) beginStatus(runID string, started time.Time) {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.status.Running = true
	im.status.RunID = runID
	im.status.StartedAt = started
}

func (im *Importer) finishStatus(res Result, err error) {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.status.Running = false
	im.status.Runs++
	im.status.FinishedAt = im.now()
	im.status.Last = res
	im.status.LastError = ""
	if err != nil {
		im.status.LastError = err.Error()
	}
}

// Status returns the current state of the importer.
func (im *Importer) Status() Status {
	im.mu.Lock()
	defer im.mu.Unlock()
	return im.status
}

// Running reports whether a run or NPC session holds the guard.
func (im *Importer) Running() bool {
	return im.running.Load()
}
