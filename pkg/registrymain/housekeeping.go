package registrymain

import (
	"runtime"
	"time"

	log "github.com/golang/glog"
	"github.com/robfig/cron"

	"github.com/joincivil/civil-tcr-registry/pkg/registry"
	"github.com/joincivil/civil-tcr-registry/pkg/utils"
)

const (
	checkRunSecs = 60
)

func checkCron(cr *cron.Cron) {
	entries := cr.Entries()
	for _, entry := range entries {
		log.Infof("Housekeeping run times: prev: %v, next: %v\n", entry.Prev, entry.Next)
	}
}

// RunHousekeeping whitelists the applications whose apply stage ended by now
func RunHousekeeping(reg *registry.Registry, now int64) int {
	promoted, err := reg.PromoteElapsedApplications(now)
	if err != nil {
		log.Errorf("Error promoting applications: err: %v", err)
	}
	if promoted > 0 {
		log.Infof("Whitelisted %v applications", promoted)
	}
	log.V(2).Infof("Done running housekeeping: %v", runtime.NumGoroutine())
	return promoted
}

// HousekeepingCron returns a cron that runs housekeeping on the config schedule.
// The cron is not started.
func HousekeepingCron(config *utils.RegistryConfig, reg *registry.Registry) (*cron.Cron, error) {
	sched, err := utils.CronParser.Parse(config.CronConfig)
	if err != nil {
		return nil, err
	}
	cr := cron.New()
	cr.Schedule(sched, cron.FuncJob(func() {
		RunHousekeeping(reg, utils.CurrentEpochSecsInInt64())
	}))
	return cr, nil
}

func runCronCheck(cr *cron.Cron, quit <-chan struct{}) {
	ticker := time.NewTicker(checkRunSecs * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			checkCron(cr)
		case <-quit:
			return
		}
	}
}
