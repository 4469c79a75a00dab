// Command fars summarizes and maps FARS traffic fatality records.
//
// Usage:
//
//	fars summarize --data-dir data 2013 2014 2015
//	fars map --data-dir data --state 1 --year 2013 --out alabama.png
//	fars publish --kafka-brokers localhost:9092 2013 2014
//	fars serve --http-addr :8080
//
// Every flag can also be set through a FARS_* environment variable, for
// example FARS_DATA_DIR, or through a config file passed with --config.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
