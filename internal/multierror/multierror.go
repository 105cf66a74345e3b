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

// Package multierror bundles several independent failures from one
// logical operation (a scanner tick's per-port detection tasks) into a
// single error value, so a tick's summary log line can report all of
// them instead of only the first.
package multierror

import (
	"bytes"
	"fmt"
)

// Error is a non-empty bundle of errors.
type Error struct {
	Errs []error
}

func (e *Error) Error() string {
	buf := bytes.NewBuffer(nil)
	fmt.Fprintf(buf, "%d error(s) occurred:", len(e.Errs))
	for _, err := range e.Errs {
		fmt.Fprintf(buf, "\n  - %s", err)
	}
	return buf.String()
}

// Len reports how many errors are bundled.
func (e *Error) Len() int { return len(e.Errs) }

// Append adds errs to err, creating a new *Error if err is nil or not
// already one. err may be nil or any plain error.
func Append(err error, errs ...error) error {
	if err == nil {
		return &Error{Errs: errs}
	}
	if me, ok := err.(*Error); ok {
		me.Errs = append(me.Errs, errs...)
		return me
	}
	return &Error{Errs: append([]error{err}, errs...)}
}
