package registrymain

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/golang/glog"

	"github.com/joincivil/civil-tcr-registry/pkg/api"
	"github.com/joincivil/civil-tcr-registry/pkg/utils"
)

const (
	shutdownTimeoutSecs = 10
)

func setupKillNotify(server *http.Server, quit chan<- struct{}) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info("Shutting down")
		close(quit)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeoutSecs*time.Second)
		defer cancel()
		err := server.Shutdown(ctx)
		if err != nil {
			log.Errorf("Error shutting down server: err: %v", err)
		}
	}()
}

// RegistryMain runs the registry API and housekeeping cron until killed
func RegistryMain(config *utils.RegistryConfig, initialized *Initialized) error {
	initialized.Recorder.Start()
	defer initialized.Close()

	cr, err := HousekeepingCron(config, initialized.Registry)
	if err != nil {
		return err
	}
	cr.Start()
	defer cr.Stop()

	server := &http.Server{
		Addr: config.HTTPAddress,
		Handler: api.New(&api.NewParams{
			Registry:  initialized.Registry,
			Clock:     utils.CurrentEpochSecsInInt64,
			AccessLog: os.Stdout,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan struct{})
	setupKillNotify(server, quit)
	go runCronCheck(cr, quit)

	log.Infof("Registry %v listening on %v", config.Name, config.HTTPAddress)
	err = server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
