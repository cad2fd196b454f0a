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
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gridpanel/gridpanel/config"
	"github.com/gridpanel/gridpanel/internal/notification"
	"github.com/gridpanel/gridpanel/internal/redisdb"
	"github.com/gridpanel/gridpanel/model"
)

// processErrorLog drains one queued error-log entry into the database. A
// failed write returns the error so asynq retries the task.
func (app *appInstance) processErrorLog(ctx context.Context, t *asynq.Task) error {
	var entry model.ErrorLog
	if err := json.Unmarshal(t.Payload(), &entry); err != nil {
		logrus.Error(err)
		return err
	}

	if err := app.ds.SaveErrorLog(ctx, entry); err != nil {
		logrus.Errorf("failed to persist error log for %s: %v", entry.ApiName, err)
		return err
	}

	log.Println(" [*] Error log persisted", entry.ApiName)
	return nil
}

func initializeQueues(conf *config.Configuration) map[string]int {
	queues := make(map[string]int)
	queues[conf.Queue.ErrorLogQueue] = 1
	return queues
}

func initializeWorkerServer(conf *config.Configuration, queues map[string]int) (*asynq.Server, error) {
	redisOption, err := redisdb.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisOption.Addr,
			Password: redisOption.Password,
			DB:       redisOption.DB,
		},
		asynq.Config{
			Concurrency: conf.Queue.Concurrency,
			Queues:      queues,
		},
	), nil
}

// workerCommands defines the "workers" command that consumes the error-log
// queue written by the gateway.
func workerCommands(app *appInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start gridpanel workers",
		Run: func(cmd *cobra.Command, args []string) {
			conf, err := config.Fetch()
			if err != nil {
				log.Fatal("Error fetching config:", err)
			}

			queues := initializeQueues(conf)

			srv, err := initializeWorkerServer(conf, queues)
			if err != nil {
				log.Fatal(err)
			}

			mux := asynq.NewServeMux()
			mux.HandleFunc(conf.Queue.ErrorLogQueue, app.processErrorLog)

			if err := srv.Run(mux); err != nil {
				notification.NotifyError(err)
				log.Fatalf("could not run server: %v", err)
			}
		},
	}

	return cmd
}
