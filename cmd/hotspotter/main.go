// Command hotspotter mines Git history for knowledge, ownership and activity.
package main

import (
	"os"

	"github.com/huangsam/hotspotter/cmd"
	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/internal/iocache"
)

func main() {
	cmd.SetStoreManager(iocache.Manager)
	err := cmd.Execute()
	iocache.CloseStores()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	if err != nil {
		contract.Logger.WithError(err).Error("hotspotter failed")
		os.Exit(1)
	}
}
