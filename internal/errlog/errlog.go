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

// Package errlog queues failed-operation records for asynchronous
// persistence. The gateway writes a log entry for every failed request;
// doing that inline would put a second database write on the request path,
// so entries go through the task queue and a worker drains them.
package errlog

import (
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/gridpanel/gridpanel/config"
	"github.com/gridpanel/gridpanel/internal/redisdb"
	"github.com/gridpanel/gridpanel/model"
)

// Queue wraps the asynq client used to enqueue error-log tasks.
type Queue struct {
	Client *asynq.Client
}

func NewQueue(conf *config.Configuration) (*Queue, error) {
	redisOption, err := redisdb.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		return nil, err
	}

	queueOptions := asynq.RedisClientOpt{
		Addr:     redisOption.Addr,
		Password: redisOption.Password,
		DB:       redisOption.DB,
	}
	return &Queue{Client: asynq.NewClient(queueOptions)}, nil
}

// Enqueue pushes one error-log entry onto the configured queue.
func (q *Queue) Enqueue(entry model.ErrorLog) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	task := asynq.NewTask(cfg.Queue.ErrorLogQueue, payload, asynq.Queue(cfg.Queue.ErrorLogQueue))
	if _, err := q.Client.Enqueue(task); err != nil {
		log.Println("error enqueuing error log", err)
		return err
	}
	return nil
}

// Record is the fire-and-forget entry point used on the request path. A
// logging failure must never fail the request that triggered it.
func (q *Queue) Record(entry model.ErrorLog) {
	if q == nil || q.Client == nil {
		return
	}
	if err := q.Enqueue(entry); err != nil {
		logrus.Warnf("error log dropped for %s: %v", entry.ApiName, err)
	}
}
