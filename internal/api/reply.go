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
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang/glog"
)

// replyJSON writes v as a JSON body with status, mirroring
// common/webcore.ReplyJSON's shape (set Content-Type, write status, then
// the encoded body) but via encoding/json directly rather than pulling in
// the rest of webcore's cloud-service scaffolding for one helper.
func replyJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		glog.Warningf("api: encoding response: %v", err)
	}
}

type errorReply struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func replyError(w http.ResponseWriter, status int, reason, msg string) {
	replyJSON(w, status, errorReply{Error: msg, Reason: reason})
}

var tokenEscaper = strings.NewReplacer("9", "99", "-", "90", "_", "91")

// newToken generates a random URL-safe opaque identifier, the same
// random-then-escape idiom common/webcore.UUID uses for API tokens,
// reused here for session and job-adjacent IDs that must not collide.
func newToken() string {
	buf := make([]byte, 16)
	rand.Read(buf)
	return tokenEscaper.Replace(base64.RawURLEncoding.EncodeToString(buf))
}
