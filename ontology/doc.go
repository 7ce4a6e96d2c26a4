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


// Package ontology provides the in-memory domain concept graph used for
// query expansion.
//
// The graph is a node table with typed, directed edge lists: parent/child
// edges form a DAG (validated at load time), while synonym and related-term
// edges may be cyclic. Graphs are immutable once built; hot reload swaps a
// whole new graph atomically via Provider so in-flight requests never
// observe a half-updated graph.
package ontology
