package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jcaMx/company-extractor-web/internal/app"
)

// rootOptions holds persistent flags. Flag values only override the config
// when the flag was set explicitly.
type rootOptions struct {
	configPath string
	envFiles   []string
	verbose    bool

	apiURL      string
	llmBase     string
	llmModel    string
	llmKey      string
	cacheDir    string
	storePath   string
	extractMode string
	concurrency int
	noRobots    bool
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "companyextract",
		Short:        "Discover and summarise a company's key web pages",
		Version:      app.VersionString(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.LoadEnvFiles(o.envFiles...); err != nil {
				return fmt.Errorf("load env: %w", err)
			}
			return nil
		},
	}
	cmd.SetErrPrefix("companyextract:")

	pf := cmd.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "Path to YAML or JSON config file")
	pf.StringSliceVar(&o.envFiles, "env", []string{".env"}, "Dotenv files to load before reading the environment")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "Verbose logging")
	pf.StringVar(&o.apiURL, "api.url", "", "Extraction API base URL used by the form and submit")
	pf.StringVar(&o.llmBase, "llm.base", "", "OpenAI-compatible base URL")
	pf.StringVar(&o.llmModel, "llm.model", "", "Model name")
	pf.StringVar(&o.llmKey, "llm.key", "", "API key for the OpenAI-compatible server")
	pf.StringVar(&o.cacheDir, "cache.dir", "", "Cache directory path (empty string disables the cache)")
	pf.StringVar(&o.storePath, "store.path", "", "SQLite archive path (empty disables archiving)")
	pf.StringVar(&o.extractMode, "extract.mode", "", "Text extraction mode: heuristic or readability")
	pf.IntVar(&o.concurrency, "concurrency", 0, "Pages summarised in parallel")
	pf.BoolVar(&o.noRobots, "no-robots", false, "Ignore robots.txt")

	cmd.AddCommand(newServeCmd(o), newSubmitCmd(o), newRunCmd(o), newHistoryCmd(o))
	return cmd
}

// config layers defaults, config file, environment and explicit flags, and
// sets the log level.
func (o *rootOptions) config(cmd *cobra.Command) (app.Config, error) {
	cfg := app.DefaultConfig()
	if o.configPath != "" {
		fc, err := app.LoadConfigFile(o.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("api.url", func() { cfg.APIURL = o.apiURL })
	set("llm.base", func() { cfg.LLMBaseURL = o.llmBase })
	set("llm.model", func() { cfg.LLMModel = o.llmModel })
	set("llm.key", func() { cfg.LLMAPIKey = o.llmKey })
	set("cache.dir", func() { cfg.CacheDir = o.cacheDir })
	set("store.path", func() { cfg.StorePath = o.storePath })
	set("extract.mode", func() { cfg.ExtractMode = o.extractMode })
	set("concurrency", func() { cfg.Concurrency = o.concurrency })
	set("no-robots", func() { cfg.RespectRobots = !o.noRobots })
	set("verbose", func() { cfg.Verbose = o.verbose })

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Debug().Str("api", cfg.APIURL).Str("model", cfg.LLMModel).Str("llm_base", cfg.LLMBaseURL).Msg("config loaded")
	return cfg, nil
}
