// Copyright 2025 walteh LLC
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

/*
Package config loads structured sources: files listing the references a run
should fetch.

	            +-------------+
	            | LoadConfig  |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   JSON   | |   YAML   | |   HCL    |
	| (default)| | .yml     | | .hcl     |
	+----------+ +----------+ +----------+

Every format describes the same list. An entry is either a raw reference
string or an object:

	[
	  "https://github.com/org/repo.git@v1.2.0:LICENSE",
	  {"repo": "https://github.com/org/repo.git", "path": "docs/README.md", "dest": "third_party/README.md"}
	]

Objects are normalized to repo@ref:path, with ref falling back to main.

🔄 Failures:
  - CONFIG_NOT_FOUND: the file does not exist
  - CONFIG_PARSE_ERROR: the file is not well formed
  - CONFIG_INVALID: an entry matches neither shape, or the top level is not a list
*/
package config
