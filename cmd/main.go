/*
Copyright 2025 Gridpanel Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gridpanel/gridpanel"
	"github.com/gridpanel/gridpanel/cache"
	"github.com/gridpanel/gridpanel/config"
	"github.com/gridpanel/gridpanel/database"
	"github.com/gridpanel/gridpanel/internal/errlog"
	"github.com/gridpanel/gridpanel/internal/notification"
)

// CLI wraps the root Cobra command.
type CLI struct {
	cmd *cobra.Command
}

// appInstance holds the wired service graph shared by every subcommand.
type appInstance struct {
	panel *gridpanel.Gridpanel
	ds    database.IDataSource
	queue *errlog.Queue
	cnf   *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and wires the service graph before any
// subcommand executes.
func preRun(app *appInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("gridpanel.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		if err := setupApp(app, cnf); err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}
		app.cnf = cnf

		return nil
	}
}

func setupApp(app *appInstance, cfg *config.Configuration) error {
	ds, err := database.NewDataSource(cfg)
	if err != nil {
		return fmt.Errorf("error getting datasource: %v", err)
	}

	ca, err := cache.NewCache()
	if err != nil {
		// The panel degrades to uncached reads; a dead Redis should not
		// stop the process from starting.
		log.Printf("cache unavailable, running without it: %v", err)
		ca = nil
	}

	panel, err := gridpanel.NewGridpanel(ds, ca)
	if err != nil {
		return fmt.Errorf("error creating gridpanel: %v", err)
	}

	queue, err := errlog.NewQueue(cfg)
	if err != nil {
		return fmt.Errorf("error creating error-log queue: %v", err)
	}

	app.panel = panel
	app.ds = ds
	app.queue = queue
	return nil
}

// NewCLI builds the command tree for the gridpanel binary.
func NewCLI() *CLI {
	var configFile string
	app := &appInstance{}

	var rootCmd = &cobra.Command{
		Use:   "gridpanel",
		Short: "Admin panel backend",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./gridpanel.json", "Configuration file for gridpanel")

	rootCmd.PersistentPreRunE = preRun(app)

	rootCmd.AddCommand(serverCommands(app))
	rootCmd.AddCommand(workerCommands(app))
	rootCmd.AddCommand(migrateCommands(app))

	return &CLI{cmd: rootCmd}
}

func (w CLI) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
