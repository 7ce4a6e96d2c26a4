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


package core

import (
	"fmt"
	"strings"
)

// ValidateQuery validates a Query according to domain rules.
//
// Validation rules:
//   - Text must contain at least one non-whitespace character
//   - TypeFilter, when set, must name a known partition
func ValidateQuery(q *Query) error {
	if q == nil {
		return fmt.Errorf("%w: query is nil", ErrEmptyQuery)
	}

	if strings.TrimSpace(q.Text) == "" {
		return ErrEmptyQuery
	}

	if q.TypeFilter != "" {
		if err := ValidateDocumentType(q.TypeFilter); err != nil {
			return err
		}
	}

	return nil
}

// ValidateDocumentType validates that a DocumentType names a known partition.
func ValidateDocumentType(dt DocumentType) error {
	for _, known := range AllDocumentTypes() {
		if dt == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidDocumentType, dt)
}

// ValidateAuthorityLevel validates that a level sits on the 1-5 scale.
func ValidateAuthorityLevel(level int) error {
	if level < 1 || level > 5 {
		return fmt.Errorf("%w: got %d", ErrInvalidAuthorityLevel, level)
	}
	return nil
}

// ValidateHit validates a DocumentHit produced by a partition search.
//
// Validation rules:
//   - DocumentID must not be empty
//   - Similarity must be in [0,1]
//   - Partition must name a known partition
func ValidateHit(hit *DocumentHit) error {
	if hit == nil {
		return fmt.Errorf("hit is nil")
	}

	if hit.DocumentID == "" {
		return fmt.Errorf("hit has empty document id")
	}

	if hit.Similarity < 0 || hit.Similarity > 1 {
		return fmt.Errorf("%w: got %f", ErrInvalidSimilarity, hit.Similarity)
	}

	return ValidateDocumentType(hit.Partition)
}
