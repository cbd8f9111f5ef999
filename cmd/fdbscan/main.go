package main

import (
	"os"

	"github.com/golang/glog"
	"github.com/pterm/pterm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		glog.Errorf("%+v", err)
		glog.Flush()
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}

	glog.Flush()
}
