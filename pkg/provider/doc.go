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
Package provider retrieves a single file from a remote repository.

	            +-------------+
	            |   Engine    |
	            |  (5 steps)  |
	            +------+------+
	                   |
	             +-----+-----+
	             |  Retrier  |
	             +-----+-----+
	                   |
	      +------------+------------+
	      |                         |
	+-----+-----+             +-----+-----+
	|  gitexec  |             |   gogit   |
	| (git CLI) |             | (go-git)  |
	+-----------+             +-----------+

🔄 Flow:
 1. init an empty repository in a scratch directory
 2. add the source as remote "origin"
 3. fetch exactly one ref with depth 1
 4. resolve FETCH_HEAD to a commit
 5. read the file's blob at that commit, with no checkout

Every step goes through the Retrier: retries+1 attempts, each under its
own timeout, waiting backoff*2^i between them. A path missing from the
tree is never retried and surfaces as SOURCE_FILE_NOT_FOUND; anything
else that outlasts the attempts surfaces as GIT_COMMAND_FAILED.

Backends register themselves by name; callers pick one with New.
*/
package provider
