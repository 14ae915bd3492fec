package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/goodreader/cmd/resolve"
	"github.com/lepinkainen/goodreader/internal/cache"
	"github.com/lepinkainen/goodreader/internal/config"
	"github.com/lepinkainen/goodreader/internal/wishlist"
)

var (
	runResolve = resolve.Run
	runExport  = wishlist.ExportLibrary
)

// CLI represents the complete command structure for the goodreader application
type CLI struct {
	// Global flags
	Verbose bool `short:"v" help:"Enable debug logging"`

	// Cache flags
	CacheDBFile string `help:"Path to cache SQLite database file" default:"./cache.db"`
	CacheTTL    string `help:"Cache time-to-live duration (e.g., 720h for 30 days)" default:"720h"`

	Resolve ResolveCmd `cmd:"" help:"Match a Goodreads wish list against the library catalog"`
	Export  ExportCmd  `cmd:"" help:"Export the Goodreads library CSV with a headless browser"`
	Cache   CacheCmd   `cmd:"" help:"Manage the persistent cache"`
}

// ResolveCmd represents the resolve command
type ResolveCmd struct {
	Input string `short:"f" help:"Path to Goodreads library export CSV file"`
	User  string `short:"u" help:"Goodreads user id, scrape the to-read shelf instead of a CSV"`
	Limit int    `short:"n" help:"Process at most this many entries (0 = all)"`

	Map     string `help:"Path to the output map HTML file" default:"map.html"`
	Gallery string `help:"Path to the output cover gallery HTML file" default:"covers.html"`

	Workers int `short:"w" help:"Number of concurrent catalog workers" default:"1"`

	DownloadCovers bool   `help:"Download resized cover thumbnails"`
	CoversDir      string `help:"Directory for downloaded covers" default:"covers"`
}

// ExportCmd represents the export command
type ExportCmd struct {
	Email       string        `help:"Goodreads account email (or GOODREADS_EMAIL)"`
	Password    string        `help:"Goodreads account password (or GOODREADS_PASSWORD)"`
	DownloadDir string        `short:"o" help:"Directory to place the exported CSV" default:"."`
	Headless    bool          `help:"Run the browser headless" default:"true" negatable:""`
	Timeout     time.Duration `help:"Give up on the export after this long" default:"5m"`
}

// CacheCmd represents the cache command and its subcommands
type CacheCmd struct {
	Invalidate cache.InvalidateCacheCmd `cmd:"" help:"Invalidate cached data for a source"`
}

// Execute runs the Kong-based CLI
func Execute() {
	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("goodreader"),
		kong.Description("Match a Goodreads wish list against the ESTER library catalog."),
		kong.UsageOnError(),
	)

	initLogging(cli.Verbose)
	initConfig()
	updateGlobalConfig(&cli)

	if err := ctx.Run(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	// Cache defaults
	viper.SetDefault("cache.dbfile", "./cache.db")
	viper.SetDefault("cache.ttl", "720h") // 30 days

	// Enable environment variable support
	viper.AutomaticEnv()
	if err := viper.BindEnv("goodreads.email", "GOODREADS_EMAIL"); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}
	if err := viper.BindEnv("goodreads.password", "GOODREADS_PASSWORD"); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Info("Config file not found, writing default config file...")
			if err := viper.SafeWriteConfig(); err != nil {
				slog.Error("Error writing config file", "error", err)
			}
			os.Exit(0)
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	// Initialize global config
	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	viper.Set("cache.dbfile", cli.CacheDBFile)
	viper.Set("cache.ttl", cli.CacheTTL)
}

// Run methods for each command

func (r *ResolveCmd) Run() error {
	config.SetWorkers(r.Workers)

	// Read from config if values not provided via flags
	input := r.Input
	if input == "" {
		input = viper.GetString("goodreads.csvfile")
	}
	user := r.User
	if user == "" {
		user = viper.GetString("goodreads.userid")
	}

	if input == "" && user == "" {
		return fmt.Errorf("a wish list source is required (provide --input or --user, or set goodreads.csvfile / goodreads.userid in config)")
	}

	return runResolve(context.Background(), resolve.Options{
		CSVPath:        input,
		UserID:         user,
		Limit:          r.Limit,
		MapFile:        r.Map,
		GalleryFile:    r.Gallery,
		DownloadCovers: r.DownloadCovers,
		CoversDir:      r.CoversDir,
	})
}

func (e *ExportCmd) Run() error {
	email := e.Email
	if email == "" {
		email = viper.GetString("goodreads.email")
	}
	password := e.Password
	if password == "" {
		password = viper.GetString("goodreads.password")
	}

	path, err := runExport(context.Background(), wishlist.ExportOptions{
		Email:       email,
		Password:    password,
		DownloadDir: e.DownloadDir,
		Headless:    e.Headless,
		Timeout:     e.Timeout,
	})
	if err != nil {
		return err
	}

	slog.Info("Library exported", "file", path)
	return nil
}

func initLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}
