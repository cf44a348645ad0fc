package buffer

import (
	"log"

	"github.com/dustin/go-humanize"

	"github.com/BinyuHuang-nju/bustub/common"
	"github.com/BinyuHuang-nju/bustub/disk"
)

// poolStats is the periodic bookkeeping a pool keeps on the side for
// the occasional log line; it never participates in any correctness
// decision, purely observability. Hit rate and eviction count both
// ride on common.Stats's running mean: recording 1/0 per fetch makes
// the mean itself the hit rate, and recording 1 per eviction turns the
// sample count into a plain tally.
type poolStats struct {
	s *common.Stats
}

func newPoolStats() *poolStats {
	return &poolStats{s: common.NewStats()}
}

func (ps *poolStats) recordHit()      { ps.s.Avg("fetch", 1) }
func (ps *poolStats) recordMiss()     { ps.s.Avg("fetch", 0) }
func (ps *poolStats) recordEviction() { ps.s.Avg("eviction", 1) }

// logSummary prints a human-readable line: hit rate, eviction count,
// and the pool's page capacity, poolSize frames of disk.PageSize bytes
// each (every frame is counted, whether it holds a page or not).
func (ps *poolStats) logSummary(poolSize int) {
	hitRate, fetches := ps.s.Get("fetch")
	_, evictions := ps.s.Get("eviction")
	resident := uint64(poolSize) * uint64(disk.PageSize)
	log.Printf("buffer: hit rate %.2f%% over %s fetches, %s evicted, %s resident",
		hitRate*100,
		humanize.Comma(int64(fetches)),
		humanize.Comma(int64(evictions)),
		humanize.Bytes(resident),
	)
}
