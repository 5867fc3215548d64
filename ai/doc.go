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


// Package ai provides abstractions for the embedding services used by modelvec.
//
// This package defines the Embedder and Provider interfaces, so the ingestion
// and search logic depend on abstractions rather than on a concrete embedding
// backend.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Dimensionality Projection
//
// When a deployment requires embeddings of a different dimensionality than
// the model's native output, wrap the embedder in a ProjectedEmbedder. The
// projection weights are generated once from a configured seed and reused
// for every call, keeping stored embeddings comparable across runs.
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder) return
// interface types to enforce abstraction. Test utility constructors
// (mock.NewMockEmbedder) return concrete types to enable test assertions
// and behavior injection.
package ai
