// Copyright 2025 Poiesic Systems
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


// Package search implements the concurrent retrieval fan-out and the
// authority-aware fusion ranking.
//
// The fan-out dispatches every (query variant, partition) pair to the
// vector index on a shared worker pool under one deadline. Individual
// partition failures degrade the result set instead of failing the
// search; only a fully failed fan-out is terminal.
//
// Fusion deduplicates hits across variants and partitions, then orders
// them by a composite of semantic similarity, author authority, recency,
// and partition weight. A per-document diversity cap keeps a single
// document from monopolizing the result list.
package search
