package buffer

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BinyuHuang-nju/bustub/common"
	"github.com/BinyuHuang-nju/bustub/disk"
)

func newTestShardedPool(t *testing.T, shardCount, poolSize, k, bucketSize int) (*ShardedPool, func()) {
	t.Helper()
	file := fmt.Sprintf("test_sharded_%s.db", t.Name())
	os.Remove(file)

	dm, _, err := disk.NewDiskManager(file)
	require.NoError(t, err)

	pool := NewShardedPool(shardCount, poolSize, k, bucketSize, dm, nil)
	return pool, func() {
		dm.Close()
		os.Remove(file)
		os.Remove(file + ".meta")
	}
}

func TestShardedPool_NewPageOnEveryShardRoutesByResidue(t *testing.T) {
	// The bug this guards against: allocating on a shard whose id space
	// isn't disjoint from the others used to retry against a disk-level
	// free list forever for any shard but one. Calling NewPage on all
	// four shards here must return promptly and land each id back in
	// its own shard under pageID % shardCount.
	const shardCount = 4
	pool, cleanup := newTestShardedPool(t, shardCount, 2, 2, 4)
	defer cleanup()

	for shard := 0; shard < shardCount; shard++ {
		pageID, frame, ok := pool.NewPage(shard)
		require.True(t, ok, "shard %d", shard)
		require.NotNil(t, frame)
		assert.Equal(t, common.PageID(shard), pageID%common.PageID(shardCount))
		require.True(t, pool.UnpinPage(pageID, false))
	}
}

func TestShardedPool_EachShardAllocatesItsOwnIDSpace(t *testing.T) {
	pool, cleanup := newTestShardedPool(t, 2, 2, 2, 4)
	defer cleanup()

	p0, _, ok := pool.NewPage(0)
	require.True(t, ok)
	p1, _, ok := pool.NewPage(0)
	require.True(t, ok)
	require.True(t, pool.UnpinPage(p0, false))
	require.True(t, pool.UnpinPage(p1, false))

	assert.Equal(t, common.PageID(0), p0)
	assert.Equal(t, common.PageID(2), p1) // shard 0 steps by shardCount=2

	q0, _, ok := pool.NewPage(1)
	require.True(t, ok)
	assert.Equal(t, common.PageID(1), q0)
	require.True(t, pool.UnpinPage(q0, false))
}

func TestShardedPool_FetchFlushDeleteRouteToCreatingShard(t *testing.T) {
	pool, cleanup := newTestShardedPool(t, 3, 2, 2, 4)
	defer cleanup()

	pageID, frame, ok := pool.NewPage(1)
	require.True(t, ok)
	frame.Data()[0] = 0xAB
	require.True(t, pool.UnpinPage(pageID, true))
	require.True(t, pool.FlushPage(pageID))

	fetched, ok := pool.FetchPage(pageID)
	require.True(t, ok)
	assert.Equal(t, byte(0xAB), fetched.Data()[0])
	require.True(t, pool.UnpinPage(pageID, false))

	require.True(t, pool.DeletePage(pageID))
	assert.False(t, pool.UnpinPage(pageID, false), "deleted page must no longer be pinnable")
}
