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

// Package ourio holds small filesystem helpers shared by components that
// persist state to disk.
package ourio

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/juju/errors"
	yaml "gopkg.in/yaml.v2"
)

// WriteFileAtomicIfDifferent writes data to filename via a temp file in
// the same directory plus a rename, but skips the write (and the rename)
// entirely if the existing file already holds identical bytes. Returns
// true if the file was (re)written.
func WriteFileAtomicIfDifferent(filename string, data []byte, perm os.FileMode) (bool, error) {
	exData, err := ioutil.ReadFile(filename)
	if err == nil && bytes.Equal(exData, data) {
		return false, nil
	}

	dir := filepath.Dir(filename)
	tmp, err := ioutil.TempFile(dir, filepath.Base(filename)+".tmp")
	if err != nil {
		return false, errors.Trace(err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return false, errors.Trace(err)
	}
	if err := tmp.Close(); err != nil {
		return false, errors.Trace(err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return false, errors.Trace(err)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		return false, errors.Trace(err)
	}
	return true, nil
}

// WriteYAMLFileAtomicIfDifferent marshals s as YAML and writes it via
// WriteFileAtomicIfDifferent.
func WriteYAMLFileAtomicIfDifferent(filename string, s interface{}, perm os.FileMode) (bool, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return false, errors.Trace(err)
	}
	return WriteFileAtomicIfDifferent(filename, data, perm)
}
