package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	pkg "github.com/pulsohq/pulso/pkg/internal"
	"github.com/pulsohq/pulso/pkg/internal/cache"
	"github.com/pulsohq/pulso/pkg/internal/database"
	"github.com/pulsohq/pulso/pkg/internal/http"
	"github.com/pulsohq/pulso/pkg/internal/services"
	"github.com/fatih/color"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	// Booting screen
	fmt.Println(color.YellowString(" ____        _\n|  _ \\ _   _| |___  ___\n| |_) | | | | / __|/ _ \\\n|  __/| |_| | \\__ \\ (_) |\n|_|    \\__,_|_|___/\\___/"))
	fmt.Printf("%s v%s\n", color.New(color.FgHiYellow).Add(color.Bold).Sprintf(pkg.AppName), pkg.AppVersion)
	fmt.Printf("The survey platform that keeps a finger on the pulse\n")
	color.HiBlack("=====================================================\n")

	// Configure settings
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("settings")
	viper.SetConfigType("toml")

	// Load settings
	if err := viper.ReadInConfig(); err != nil {
		log.Panic().Err(err).Msg("An error occurred when loading settings.")
	}

	// Connect to database
	if err := database.NewGorm(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connect to database.")
	} else if err := database.RunMigration(database.C); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when running database auto migration.")
	}

	// Prepare in-process cache
	if err := cache.NewStore(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when setting up the cache.")
	}

	// Configure timed tasks
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	cleanupSpec := viper.GetString("privacy.cleanup_cron")
	if len(cleanupSpec) == 0 {
		cleanupSpec = "0 3 * * *"
	}
	if _, err := quartz.AddFunc(cleanupSpec, services.DoAutoDatabaseCleanup); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when scheduling the retention cleanup.")
	}
	quartz.Start()

	// Server
	go http.NewServer().Listen()

	// Messages
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	quartz.Stop()
}
