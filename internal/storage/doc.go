/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage persists projects.
// Projects travel as a versionless JSON document (see Document) that is
// validated against an embedded JSON schema before it is decoded.
// Store keeps documents in a local SQLite database with a size quota; when the
// quota is hit the oldest other projects are pruned first.
// WriteFile/ReadFile export a document to disk transactionally, keeping
// timestamped backups of the file being replaced.
package storage
