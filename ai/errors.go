// Copyright 2025 Kanddle
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


package ai

import "errors"

var (
	// ErrModelUnavailable indicates the embedding backend failed to load or infer.
	// Callers do not retry internally; the failure aborts the calling operation.
	ErrModelUnavailable = errors.New("embedding model unavailable")

	// ErrDimensionMismatch indicates a vector's length does not match the
	// dimensionality the projection was fixed to.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
