package main

import (
	"flag"

	"github.com/sirupsen/logrus"

	"github.com/qcserestipy/pibench/pkg/serve"
)

func main() {
	portPtr := flag.Int("port", 3000, "Port to listen on")
	capPtr := flag.Int("workers-cap", 0, "Reject requests above this worker count (0 = uncapped)")
	flag.Parse()

	server := serve.New(*capPtr)
	logrus.WithFields(logrus.Fields{
		"port":        *portPtr,
		"workers_cap": *capPtr,
	}).Info("Starting π compute server")
	serve.Launch(server, *portPtr)
}
