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

// Package version holds espbrewd's build identity, populated by the
// linker at build time (-ldflags "-X") exactly as the teacher's own
// version package is, but pared down to the two fields this server
// actually reports: Version in GET /health and GET /api/v1/boards'
// server_info, and both fields in GET /api/v1/version.
package version

// Version and BuildId are overridden at link time; the zero values below
// are what a `go build` with no ldflags reports, matching fwbuild_manager's
// own "%s (%s)" startup log line.
var (
	Version = "dev"
	BuildId = "dev"
)
