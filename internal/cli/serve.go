package cli

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KofuCodes/ReMind/internal/config"
	logger "github.com/KofuCodes/ReMind/internal/logging"
	"github.com/KofuCodes/ReMind/internal/models"
	"github.com/KofuCodes/ReMind/internal/router"
	"github.com/KofuCodes/ReMind/internal/scoring"
	"github.com/KofuCodes/ReMind/internal/store"
	syncpkg "github.com/KofuCodes/ReMind/internal/sync"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard server",
		Run:   runServe,
	}

	RootCmd.AddCommand(cmd)
}

// reloadTarget carries the logger and store into the config watcher
// callback. Both are assigned after the watch starts, and the callback
// runs on the fsnotify goroutine, so access goes through a mutex.
type reloadTarget struct {
	mu    sync.Mutex
	log   *zap.Logger
	store *store.MemoryStore
}

func (t *reloadTarget) set(log *zap.Logger, st *store.MemoryStore) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.log = log
	t.store = st
}

func (t *reloadTarget) apply(c *config.Config) {
	t.mu.Lock()
	log, st := t.log, t.store
	t.mu.Unlock()

	if st == nil {
		return
	}
	// A baseline edit in the config file takes effect immediately;
	// as with the API, only the latest record is rescored.
	st.ApplyBaseline(c.Baseline)
	log.Info("Baseline re-applied from config",
		zap.Float64("expected_score", c.Baseline.ExpectedScore))
}

func runServe(cmd *cobra.Command, args []string) {
	// Bootstrap logger for config loading; the real logger needs the
	// logging config first.
	bootLog, err := zap.NewDevelopment()
	if err != nil {
		exitErr("init bootstrap logger", err)
	}

	target := &reloadTarget{}
	if err := config.Init(projectRoot, bootLog, target.apply); err != nil {
		exitErr("load config", err)
	}

	log, err := logger.Init(projectRoot, config.Conf.Logging)
	if err != nil {
		exitErr("init logger", err)
	}
	defer log.Sync()

	strategy := scoring.ForVariant(config.Conf.Scoring.Variant)
	sessionStore := store.NewMemoryStore(log, strategy, config.Conf.Baseline)
	target.set(log, sessionStore)
	log.Info("Session store initialized",
		zap.String("variant", strategy.Name()),
		zap.Float64("expected_score", config.Conf.Baseline.ExpectedScore))

	// Optional persistent archive.
	var archive *store.Archive
	if config.Conf.Store.Driver == "postgres" {
		archive, err = store.OpenArchive(config.Conf.Database, log)
		if err != nil {
			log.Fatal("Failed to open archive database", zap.Error(err))
		}
		sessionStore.AttachArchive(archive)
	}

	// Optional baseline profiles.
	var profiles *models.BaselineProfiles
	profilesPath := filepath.Join(projectRoot, "config", "baselines.yaml")
	if _, statErr := os.Stat(profilesPath); statErr == nil {
		profiles, err = models.LoadBaselineProfiles(profilesPath)
		if err != nil {
			log.Fatal("Failed to load baseline profiles", zap.Error(err))
		}
		log.Info("Baseline profiles loaded", zap.Int("count", len(profiles.Profiles)))
	}

	// Optional remote mirror.
	var pusher *syncpkg.Pusher
	if config.Conf.Sync.PushURL != "" {
		pusher = syncpkg.NewPusher(config.Conf.Sync.PushURL, log)
	}
	if config.Conf.Sync.PollURL != "" {
		interval := time.Duration(config.Conf.Sync.PollIntervalSeconds) * time.Second
		poller := syncpkg.NewPoller(config.Conf.Sync.PollURL, interval, sessionStore, log)
		poller.Start()
		defer poller.Stop()
	}

	r := router.Setup(log, sessionStore, profiles, pusher, archive)

	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}
