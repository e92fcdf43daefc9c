package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/vfsim/vfsim/config"
	"github.com/vfsim/vfsim/internal/util"
	"github.com/vfsim/vfsim/mount"
	"github.com/vfsim/vfsim/vfs"
)

func main() {
	var (
		configPath string
		fsLabel    string
		verbose    int
		mountpoint string
	)
	flag.StringVar(&configPath, "config", "", "Path to config file (yaml or json)")
	flag.StringVar(&configPath, "c", "", "--config (shorthand)")
	flag.StringVar(&fsLabel, "fs", "", "Simulated filesystem label (ext4, ntfs, fat32, btrfs, xfs, nfs)")
	flag.StringVar(&mountpoint, "mount", "", "Serve the simulated tree at this FUSE mountpoint instead of the interactive shell")
	flag.StringVar(&mountpoint, "m", "", "--mount (shorthand)")
	flag.IntVar(&verbose, "verbose", 3, "Log verbosity level between 1 (error) and 5 (trace). Default is 3 (info).")
	flag.IntVar(&verbose, "v", 3, "--verbose (shorthand)")
	flag.Parse()

	// Initialize logger
	if verbose < 1 {
		verbose = 1
	}
	if verbose > 5 {
		verbose = 5
	}
	logLvls := [5]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}
	logLvl := logLvls[verbose-1]
	util.InitializeLogger(logLvl)
	logger := util.GetLogger("main")

	cfg := config.NewDefaultConfig()
	if configPath != "" {
		override, err := config.LoadConfigOverrideFile(configPath)
		if err != nil {
			logger.Fatal().Err(err).Str("config", configPath).Msg("Failed to load config file")
		}
		cfg.Merge(override)
	}
	if fsLabel != "" {
		cfg.Filesystem = fsLabel
	}
	cfg.LogLvl = logLvl // flags win over file config for verbosity
	if _, err := vfs.ParseFilesystemType(cfg.Filesystem); err != nil {
		logger.Fatal().Err(err).Msg("Invalid filesystem label")
	}

	sim := vfs.New(cfg)
	logger.Info().Str("fs", cfg.Filesystem).Str("mount_id", sim.MountID()).Msg("Simulator initialized")

	if mountpoint == "" {
		runShell(sim, cfg)
		return
	}

	server, err := mount.Mount(mountpoint, sim, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("mountpoint", mountpoint).Msg("Failed to mount filesystem")
	}
	logger.Info().Str("mountpoint", mountpoint).Msg("Filesystem mounted successfully")

	// Wait for termination signal, then unmount
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	sig := <-signalChan
	logger.Info().Str("signal", sig.String()).Msg("Received signal, unmounting filesystem")

	if err := server.Unmount(); err != nil {
		logger.Error().Err(err).Msg("Failed to unmount filesystem")
	}
	server.Wait()
}
