// Command respproxy runs a RESP server framed by the codec, useful for
// exercising the framing layer with real Redis clients.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	respcodec "github.com/raniellyferreira/redis-resp-codec"
)

var rootCmd = &cobra.Command{
	Use:     "respproxy",
	Short:   "RESP framing layer playground server",
	Version: respcodec.Version,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
