package main

import (
	"github.com/kiteco/govw/kite-golib/cmdline"
)

func main() {
	cmdline.MustDispatch(recordsCmd, streamCmd, fileCmd)
}
