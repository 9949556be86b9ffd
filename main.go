package main

import (
	"log"
)

// Build infos injected at compile time.
var (
	GitCommit string
	GitTag    string
	BuildTime string
)

func main() {
	app, err := NewApp()
	if err != nil {
		log.Fatal("application failed to initialize: ", err)
	}
	err = app.Run()
	if err != nil {
		log.Fatal("application exited. check logs for more details. ", err)
	}
}
