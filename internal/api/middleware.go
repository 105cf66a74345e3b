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
package api

import (
	"net/http"
	"time"

	"github.com/golang/glog"
)

// requestLogger is goji.io middleware logging one glog line per request,
// adapted from fwbuild/manager/middleware/logger.go's MakeLogger but
// routed through glog.V(1) instead of fmt.Printf, matching the rest of
// this server's logging idiom.
func requestLogger(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := r.URL.Path
		if r.URL.RawQuery != "" {
			path += "?" + r.URL.RawQuery
		}
		clientIP := r.RemoteAddr
		if ips, ok := r.Header["X-Real-Ip"]; ok && len(ips) > 0 {
			clientIP = ips[0]
		}

		inner.ServeHTTP(w, r)

		glog.V(1).Infof("%s %s %-7s %s (%s)", clientIP, start.Format("15:04:05"), r.Method, path, time.Since(start))
	})
}
