// Copyright (c) 2024 Telisik Project and contributors, All rights reserved.
//
// This file is part of Telisik.
//
// Telisik is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation version 3 of the License.
//
// Telisik is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Telisik. If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/telisik/telisik/internal/pkg/shared/logger"

	"github.com/telisik/telisik/internal/pkg/recon/engine"
	"github.com/telisik/telisik/internal/pkg/recon/server"
	"github.com/telisik/telisik/internal/pkg/shared/fs"
	"github.com/telisik/telisik/pkg/plugin"

	// reputation lookup modules register themselves on import
	_ "github.com/telisik/telisik/internal/pkg/module/virustotal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	progName = "telisik"
)

var version string
var buildTime string

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(modulesCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(serverCmd)
	rootCmd.PersistentFlags().Bool("dev", false, "Enable development environment specific setting")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug messages for tracing and troubleshooting")
	rootCmd.PersistentFlags().IntP("maxWorkers", "w", 10, "Max. number of events processed concurrently per scan")
	rootCmd.PersistentFlags().Int("maxTime", 0, "Max. scan run time in minutes, 0 means unlimited")
	scanCmd.Flags().StringSliceP("modules", "m", []string{},
		"Modules to run, defaults to all enabled in the configs directory")
	serverCmd.Flags().StringP("address", "a", "0.0.0.0", "IP address for the HTTP server to listen on")
	serverCmd.Flags().IntP("port", "p", 8080, "TCP port for the HTTP server to listen on")
	serverCmd.Flags().Bool("pprof", false, "Enable go pprof on the HTTP server")
	viper.BindPFlag("dev", rootCmd.PersistentFlags().Lookup("dev"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("maxWorkers", rootCmd.PersistentFlags().Lookup("maxWorkers"))
	viper.BindPFlag("maxTime", rootCmd.PersistentFlags().Lookup("maxTime"))
	viper.BindPFlag("modules", scanCmd.Flags().Lookup("modules"))
	viper.BindPFlag("address", serverCmd.Flags().Lookup("address"))
	viper.BindPFlag("port", serverCmd.Flags().Lookup("port"))
	viper.BindPFlag("pprof", serverCmd.Flags().Lookup("pprof"))
}

func initConfig() {
	viper.SetEnvPrefix(progName)
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		exit("Error returned from command", err)
	}
}

func exit(msg string, err error) {
	fmt.Println(msg+":", err)
	os.Exit(1)
}

var rootCmd = &cobra.Command{
	Use:   "telisik",
	Short: "OSINT reconnaissance scanner",
	Long: `
Telisik is an OSINT reconnaissance scanner.

Telisik seeds a scan from a target domain, IP address, or netblock, and
runs its findings through reputation lookup modules. Each module watches
for event categories it can act on and emits new events for the others,
until no lead remains.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build information",
	Long:  `Print the version and build information`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version, buildTime)
	},
}

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List the available scan modules",
	Long:  `List the registered scan modules with the event categories they watch and produce`,
	Run: func(cmd *cobra.Command, args []string) {
		names := plugin.Modules.Names()
		sort.Strings(names)
		for _, n := range names {
			m := plugin.Modules.Lookup(n)
			fmt.Printf("%s\n  watches:  %s\n  produces: %s\n", n,
				strings.Join(m.WatchedEvents(), ", "),
				strings.Join(m.ProducedEvents(), ", "))
		}
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan [target]",
	Short: "Scan a target and write the report to the logs directory",
	Long: `
Scan a single target, waiting for all modules to finish.

The target can be a domain name, an IP address, or a netblock in CIDR
notation. Module configuration is read from module_*.json files in the
configs directory, and the scan report is written to the logs directory.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log.Setup(viper.GetBool("debug"))

		d, err := fs.GetDir(viper.GetBool("dev"))
		if err != nil {
			exit("Cannot get current directory??", err)
		}
		confDir := path.Join(d, "configs")
		logDir := path.Join(d, "logs")

		only := viper.GetStringSlice("modules")
		mods, err := engine.InitModules(confDir, only)
		if err != nil {
			exit("Cannot initialize modules", err)
		}

		eng := engine.New(mods, viper.GetInt("maxWorkers"))
		if mt := viper.GetInt("maxTime"); mt > 0 {
			eng.SetMaxDuration(time.Duration(mt) * time.Minute)
		}
		sc, err := eng.Start(context.Background(), args[0], nil)
		if err != nil {
			exit("Cannot start scan", err)
		}

		// ^C stops the scan gracefully, results so far still get reported
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt)
		go func() {
			<-ch
			sc.Stop()
		}()
		<-sc.Done()

		if err := sc.WriteReport(logDir); err != nil {
			exit("Cannot write scan report", err)
		}
		rep := sc.Result()
		fmt.Printf("scan %s of %s %s: %d events, report written to %s\n",
			rep.ScanID, rep.Target, rep.Status, rep.EventCount,
			path.Join(logDir, "scan_"+rep.ScanID+".json"))
		if rep.Error != "" {
			exit("Scan ended with error", fmt.Errorf("%s", rep.Error))
		}
	},
}

var serverCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `
Start the telisik HTTP server.

The server starts scans on request and serves their status and results.
Module configuration is read from module_*.json files in the configs
directory, and completed scan reports are written to the logs directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		log.Setup(viper.GetBool("debug"))

		d, err := fs.GetDir(viper.GetBool("dev"))
		if err != nil {
			exit("Cannot get current directory??", err)
		}
		confDir := path.Join(d, "configs")
		logDir := path.Join(d, "logs")

		mods, err := engine.InitModules(confDir, nil)
		if err != nil {
			exit("Cannot initialize modules", err)
		}

		log.Info(log.M{Msg: "Starting " + progName + " " + version})

		eng := engine.New(mods, viper.GetInt("maxWorkers"))
		if mt := viper.GetInt("maxTime"); mt > 0 {
			eng.SetMaxDuration(time.Duration(mt) * time.Minute)
		}

		cf := server.Config{}
		cf.Engine = eng
		cf.Addr = viper.GetString("address")
		cf.Port = viper.GetInt("port")
		cf.LogDir = logDir
		cf.Pprof = viper.GetBool("pprof")

		if err := server.Start(cf); err != nil {
			exit("Cannot start server", err)
		}

		waitInterruptSignal()
	},
}

func waitInterruptSignal() {
	var wg sync.WaitGroup
	wg.Add(1)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	go func() {
		<-ch
		wg.Done()
	}()
	wg.Wait()
}
