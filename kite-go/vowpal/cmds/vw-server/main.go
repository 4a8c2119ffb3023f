package main

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	arg "github.com/alexflint/go-arg"
	"github.com/kiteco/govw/kite-golib/envutil"
	"github.com/kiteco/govw/kite-golib/kitelog"
	"github.com/kiteco/govw/kite-golib/vowpal"
)

func main() {
	args := struct {
		Port    int     `arg:"--port" help:"port to listen for http requests"`
		VW      string  `arg:"--vw" help:"path to the vw binary"`
		WorkDir string  `arg:"--workdir" help:"directory for per-request scratch files"`
		Passes  int     `arg:"--passes" help:"number of training passes"`
		L2      string  `arg:"--l2" help:"L2 regularization strength"`
		MaxRate float64 `arg:"--max-rate" help:"vw runs per second, unlimited if zero"`
	}{
		Port:    envutil.GetenvDefaultInt("VW_SERVER_PORT", 8600),
		VW:      envutil.GetenvDefault("VW_PATH", vowpal.DefaultBinary),
		WorkDir: envutil.GetenvDefault("VW_WORKDIR", "/tmp/vw-server"),
	}
	arg.MustParse(&args)

	var vwArgs vowpal.Args
	if args.Passes > 0 {
		vwArgs = vwArgs.Set(vowpal.Option("--passes", strconv.Itoa(args.Passes)))
	}
	if args.L2 != "" {
		vwArgs = vwArgs.Set(vowpal.Option("--l2", args.L2))
	}

	logger := kitelog.Basic
	defer logger.Sync()

	s := newServer(args.VW, args.WorkDir, vwArgs, logger, args.MaxRate)
	logger.Printf("listening on :%d, vw %s, scratch files in %s", args.Port, args.VW, args.WorkDir)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", args.Port), s.handler()))
}
