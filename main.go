package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/studylock/internal/database"
	"github.com/example/studylock/internal/enforcer"
	"github.com/example/studylock/internal/importer"
	"github.com/example/studylock/internal/ledger"
	"github.com/example/studylock/internal/notify"
	"github.com/example/studylock/internal/report"
	"github.com/example/studylock/internal/scheduling"
	"github.com/example/studylock/internal/study"
)

func main() {
	_ = godotenv.Load()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	store, err := database.OpenFromEnv()
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	modeConfigs := database.NewModeConfigRepository(store)
	if err := modeConfigs.SeedDefaults(); err != nil {
		log.Fatalf("Failed to seed mode configs: %v", err)
	}

	if path := os.Getenv("QUESTION_BANK_PATH"); path != "" {
		_, result, err := importer.Questions(importer.DefaultConfig(path))
		if err != nil {
			log.Fatalf("Failed to import question bank: %v", err)
		}
		log.Printf("Question bank: %d imported, %d skipped", result.Imported, result.Skipped)
	}

	progress := database.NewProgressRepository(store)
	engine := scheduling.New(progress, modeConfigs)
	lgr := ledger.New(store)
	agg := report.NewAggregator(store)
	svc := study.New(engine, lgr, agg)
	if balance, err := svc.Balance(); err == nil {
		log.Printf("Point balance: %d", balance)
	}

	var notifier report.Notifier
	if tg, err := notify.NewTelegramFromEnv(); err != nil {
		log.Printf("Parent notifications disabled: %v", err)
	} else {
		notifier = tg
	}

	dispatcher := report.NewDispatcher(agg, nil, notifier)
	dispatcher.Start()
	defer dispatcher.Stop()

	enf := enforcer.New(enforcer.Config{
		HostPackage:  os.Getenv("HOST_PACKAGE"),
		Locks:        database.NewLockRegistryRepository(store),
		Grants:       database.NewUnlockRepository(store),
		Presenter:    logPresenter{},
		PollInterval: pollIntervalFromEnv(),
	})
	enf.Start()
	defer enf.Stop()
	<-enf.Ready()

	log.Println("studylock started. Press Ctrl+C to stop.")
	sig := <-sigChan
	log.Printf("Received signal: %v, shutting down", sig)
}

// pollIntervalFromEnv reads POLL_INTERVAL_SEC; zero lets the enforcer use
// its default.
func pollIntervalFromEnv() time.Duration {
	sec, err := strconv.Atoi(os.Getenv("POLL_INTERVAL_SEC"))
	if err != nil || sec <= 0 {
		return 0
	}
	return time.Duration(sec) * time.Second
}

// logPresenter stands in for the platform block screen when the daemon runs
// without a UI host attached.
type logPresenter struct{}

func (logPresenter) PresentBlock(packageID string) {
	log.Printf("BLOCK %s", packageID)
}
