package announce

import (
	"fmt"
	"sync"
	"time"

	"github.com/greenshelf/scorer/pkg/models"
)

// Namer produces collision-free audio file names of the form
// {kind}_{epoch_millis}.mp3. The kind prefix separates assets of
// different kinds in the same millisecond; within one kind the last
// issued timestamp is bumped forward on collision.
type Namer struct {
	mu   sync.Mutex
	last map[models.AnnouncementKind]int64
	now  func() time.Time
}

func NewNamer() *Namer {
	return &Namer{
		last: make(map[models.AnnouncementKind]int64),
		now:  time.Now,
	}
}

// FileName returns a unique asset name for the kind
func (n *Namer) FileName(kind models.AnnouncementKind) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	millis := n.now().UnixMilli()
	if millis <= n.last[kind] {
		millis = n.last[kind] + 1
	}
	n.last[kind] = millis

	return fmt.Sprintf("%s_%d.mp3", kind, millis)
}
