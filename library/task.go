// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package library

import (
	"strconv"

	"github.com/google/uuid"
)

// Task is one dataset execution: which provider dataset to run and the
// configuration it should run with. Config values come from the krdata
// config file and command line flags.
type Task struct {
	ID       uuid.UUID
	Name     string
	Provider string
	Dataset  string
	Config   map[string]string

	Library *Library
}

// NewTask creates a task for a provider dataset with a fresh run id.
func NewTask(providerKey, datasetKey string, config map[string]string, myLibrary *Library) *Task {
	if config == nil {
		config = make(map[string]string)
	}

	return &Task{
		ID:       uuid.New(),
		Name:     providerKey + "/" + datasetKey,
		Provider: providerKey,
		Dataset:  datasetKey,
		Config:   config,
		Library:  myLibrary,
	}
}

// ConfigInt reads an integer config value, falling back to def when the
// key is unset or not a number.
func (task *Task) ConfigInt(key string, def int) int {
	raw, ok := task.Config[key]
	if !ok {
		return def
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}

	return value
}

// Workers returns the bounded worker pool size for this task, clamped to
// [1, 50].
func (task *Task) Workers() int {
	workers := task.ConfigInt("workers", 10)
	if workers < 1 {
		workers = 1
	}
	if workers > 50 {
		workers = 50
	}
	return workers
}
