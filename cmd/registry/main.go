package main

import (
	"flag"
	"os"

	log "github.com/golang/glog"

	"github.com/joincivil/civil-tcr-registry/pkg/registrymain"
	"github.com/joincivil/civil-tcr-registry/pkg/utils"
)

func main() {
	config := &utils.RegistryConfig{}
	flag.Usage = func() {
		config.OutputUsage()
		os.Exit(0)
	}
	flag.Parse()

	err := config.PopulateFromEnv()
	if err != nil {
		config.OutputUsage()
		log.Errorf("Invalid registry config: err: %v\n", err)
		os.Exit(2)
	}

	initialized, err := registrymain.Init(config)
	if err != nil {
		log.Errorf("Error initializing registry: err: %v", err)
		os.Exit(2)
	}

	err = registrymain.RegistryMain(config, initialized)
	if err != nil {
		log.Errorf("Error running registry: err: %v", err)
		log.Flush()
		os.Exit(1)
	}
	log.Flush()
}
