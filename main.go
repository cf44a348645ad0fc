package main

import (
	"encoding/json"
	"log"

	"github.com/BinyuHuang-nju/bustub/buffer"
	"github.com/BinyuHuang-nju/bustub/common"
	"github.com/BinyuHuang-nju/bustub/disk"
)

type demoRecord struct {
	Num int
	Val string
}

func main() {
	dm, _, err := disk.NewDiskManager("bustub.db")
	common.PanicIfErr(err)
	defer dm.Close()

	pool := buffer.NewBufferPoolManager(common.DefaultPoolSize, common.DefaultReplacerK, common.DefaultBucketSize, dm, nil)

	for i := 0; i < 50; i++ {
		pageID, frame, ok := pool.NewPage()
		if !ok {
			log.Printf("pool exhausted at iteration %d", i)
			break
		}

		rec := demoRecord{Num: i, Val: "hello"}
		raw, _ := json.Marshal(rec)
		copy(frame.Data(), raw)

		pool.UnpinPage(pageID, true)
	}

	pool.FlushAllPages()
}
