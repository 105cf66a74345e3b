//
// Copyright (c) 2014-2019 Cesanta Software Limited
// All rights reserved
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
package registry

import (
	"io/ioutil"
	"os"
	"time"

	flock "github.com/theckman/go-flock"
	goversion "github.com/mcuadros/go-version"
	"github.com/golang/glog"
	"github.com/juju/errors"
	"github.com/mongoose-os/espbrewd/internal/ourio"
	yaml "gopkg.in/yaml.v2"
)

// CurrentSchemaVersion is the schema version this binary writes.
const CurrentSchemaVersion = "1.0.0"

// MinSupportedSchemaVersion is the schema version assumed for a file that
// declares none. A file declaring an older version is still loaded: its
// version is bumped to CurrentSchemaVersion in memory, not rejected.
const MinSupportedSchemaVersion = "1.0.0"

type fileBoardType struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Chip   string `yaml:"chip"`
	Source string `yaml:"source,omitempty"`
}

type fileAssignment struct {
	BoardUniqueID string    `yaml:"board_unique_id"`
	BoardTypeID   string    `yaml:"board_type_id"`
	LogicalName   string    `yaml:"logical_name,omitempty"`
	AssignedAt    time.Time `yaml:"assigned_at"`
}

// fileFormat is the on-disk shape of the assignment file, per §6:
// {schema_version, server, board_types:[...], assignments:[...]}.
type fileFormat struct {
	SchemaVersion string           `yaml:"schema_version"`
	Server        string           `yaml:"server,omitempty"`
	BoardTypes    []fileBoardType  `yaml:"board_types"`
	Assignments   []fileAssignment `yaml:"assignments"`
}

// load reads the assignment file at path. A missing file is not an
// error (first run); an unreadable-but-present file is, per §7's
// "infrastructure errors fail fast at startup only".
func load(path string) (*fileFormat, error) {
	data, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return &fileFormat{SchemaVersion: CurrentSchemaVersion}, nil
	}
	if err != nil {
		return nil, errors.Annotatef(err, "reading %s", path)
	}
	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, errors.Annotatef(err, "parsing %s", path)
	}
	if ff.SchemaVersion == "" {
		ff.SchemaVersion = MinSupportedSchemaVersion
	}
	if goversion.Compare(ff.SchemaVersion, CurrentSchemaVersion, ">") {
		return nil, errors.Errorf("%s: schema version %s is newer than this binary supports (%s)", path, ff.SchemaVersion, CurrentSchemaVersion)
	}
	if goversion.Compare(ff.SchemaVersion, MinSupportedSchemaVersion, "<") {
		glog.Infof("%s: migrating schema %s -> %s", path, ff.SchemaVersion, CurrentSchemaVersion)
		ff.SchemaVersion = CurrentSchemaVersion
	}
	return &ff, nil
}

// save writes ff to path atomically, guarded by a flock on path+".lock"
// so two server processes sharing a config dir never interleave writes.
func save(path string, ff *fileFormat) error {
	fl := flock.NewFlock(path + ".lock")
	if err := fl.Lock(); err != nil {
		return errors.Annotate(err, "locking config file")
	}
	defer fl.Unlock()

	data, err := yaml.Marshal(ff)
	if err != nil {
		return errors.Trace(err)
	}
	if _, err := ourio.WriteFileAtomicIfDifferent(path, data, 0644); err != nil {
		return errors.Annotatef(err, "writing %s", path)
	}
	return nil
}
