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

// Package pflagenv lets environment variables override pflag defaults for
// any flag the caller didn't explicitly set on the command line.
package pflagenv

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// ParseFlagSet visits every flag in fs that was NOT explicitly set on the
// command line and, for each one, checks whether an environment variable
// named envPrefix+FLAG_NAME (uppercased, dashes turned to underscores)
// is set; if so, it becomes the flag's value. Call after fs.Parse.
func ParseFlagSet(fs *pflag.FlagSet, envPrefix string) {
	// pflag doesn't distinguish "set to its default" from "never
	// mentioned", so start from every flag and subtract the ones Visit
	// reports as explicitly set.
	unset := make(map[string]*pflag.Flag)
	fs.VisitAll(func(f *pflag.Flag) {
		unset[f.Name] = f
	})
	fs.Visit(func(f *pflag.Flag) {
		delete(unset, f.Name)
	})

	for name, f := range unset {
		if v := os.Getenv(envName(name, envPrefix)); v != "" {
			f.Value.Set(v)
			f.Changed = true
		}
	}
}

// Parse is ParseFlagSet against the default pflag.CommandLine FlagSet.
func Parse(envPrefix string) {
	ParseFlagSet(pflag.CommandLine, envPrefix)
}

func envName(flagName, envPrefix string) string {
	flagName = strings.ToUpper(flagName)
	flagName = strings.Replace(flagName, "-", "_", -1)
	return fmt.Sprint(envPrefix, flagName)
}
