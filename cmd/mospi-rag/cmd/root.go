package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openstatlab/mospi-rag/internal/config"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
)

// GetConfig returns the loaded configuration.
func GetConfig() config.Config {
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "mospi-rag",
	Short: "mospi-rag: a publications retrieval system",
	Long: `mospi-rag crawls a government publications listing site, downloads the
linked PDF reports, extracts their text and tables, builds a local vector
index over overlapping text chunks, and answers questions grounded in the
indexed content.

Commands:
  crawl    Crawl the listing pages and download linked PDFs
  process  Extract text and tables from downloaded PDFs and chunk them
  index    Embed processed chunks and build the vector index
  search   Query the index from the command line
  serve    Start the HTTP question answering API
  mcp      Start the MCP server for document retrieval`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogger() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func initConfig() {
	cfg = config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/mospi-rag")
		viper.AddConfigPath(".")
	}

	// Environment variable overrides
	// MOSPIRAG_CRAWLER_SEED_URL -> crawler.seed_url
	viper.SetEnvPrefix("MOSPIRAG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Explicitly bind nested env vars
	viper.BindEnv("crawler.seed_url", "MOSPIRAG_CRAWLER_SEED_URL")
	viper.BindEnv("crawler.max_pages", "MOSPIRAG_CRAWLER_MAX_PAGES")
	viper.BindEnv("crawler.rate_limit", "MOSPIRAG_CRAWLER_RATE_LIMIT")
	viper.BindEnv("crawler.user_agent", "MOSPIRAG_CRAWLER_USER_AGENT")
	viper.BindEnv("data.dir", "MOSPIRAG_DATA_DIR")
	viper.BindEnv("chunker.size", "MOSPIRAG_CHUNKER_SIZE")
	viper.BindEnv("chunker.overlap", "MOSPIRAG_CHUNKER_OVERLAP")
	viper.BindEnv("ollama.base_url", "MOSPIRAG_OLLAMA_BASE_URL")
	viper.BindEnv("ollama.embed_model", "MOSPIRAG_OLLAMA_EMBED_MODEL")
	viper.BindEnv("ollama.chat_model", "MOSPIRAG_OLLAMA_CHAT_MODEL")
	viper.BindEnv("retrieval.top_k", "MOSPIRAG_RETRIEVAL_TOP_K")
	viper.BindEnv("api.addr", "MOSPIRAG_API_ADDR")
	viper.BindEnv("mcp.name", "MOSPIRAG_MCP_NAME")
	viper.BindEnv("mcp.version", "MOSPIRAG_MCP_VERSION")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("config file error", "error", err)
		}
		// No config file; defaults plus env vars apply
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Warn("failed to parse config", "error", err)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
}
