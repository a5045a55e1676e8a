package presets

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/go-entrypoint/config"
)

func init() {
	register("standalone", standalone())
}

// standalone runs against a throwaway database with permissive sponsor limits.
func standalone() config.Config {
	conf := config.DefaultConfig()
	conf.Database = filepath.Join(os.TempDir(), "entrypoint", "standalone.sql")

	conf.Engine.ChainID = 1337
	conf.Engine.MinSponsorStake = 1
	conf.Engine.MinUnstakeDelay = time.Second
	conf.Engine.UnstakedSponsorOps = 16

	conf.Logging.AppLoggerLevel = zapcore.DebugLevel.String()
	conf.Logging.EngineLoggerLevel = zapcore.DebugLevel.String()
	return conf
}
